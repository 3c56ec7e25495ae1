package db

import (
	"encoding/csv"
	"os"
	"strings"

	"gorm.io/gorm"
)

type imageRecord struct {
	Category string
	Filename string
	Title    string
}

// LoadImageLibrary reads image metadata from a CSV (category,filename,title)
// and upserts it into the images table.
func LoadImageLibrary(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := readImages(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		entry := Image{
			Category: record.Category,
			Filename: record.Filename,
			Title:    record.Title,
			Active:   true,
		}
		if err := conn.FirstOrCreate(&entry, Image{Category: entry.Category, Filename: entry.Filename}).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readImages(path string) ([]imageRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []imageRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			continue
		}
		record := imageRecord{
			Category: strings.TrimSpace(row[0]),
			Filename: strings.TrimSpace(row[1]),
			Title:    strings.TrimSpace(row[2]),
		}
		if record.Category == "" || record.Filename == "" {
			continue
		}
		if record.Title == "" {
			record.Title = record.Filename
		}
		records = append(records, record)
	}
	return records, nil
}
