package main

import (
	"flag"
	"log"

	"fakeframe/internal/config"
	"fakeframe/internal/db"
)

func main() {
	filePath := flag.String("file", "images.csv", "path to image library csv (category,filename,title)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	inserted, err := db.LoadImageLibrary(conn, *filePath)
	if err != nil {
		log.Fatalf("failed to load image library: %v", err)
	}
	log.Printf("loaded %d images", inserted)
}
