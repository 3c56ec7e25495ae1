package db

import "time"

// Image is one entry in the content library. A round pairs two active images
// from the same category.
type Image struct {
	ID        uint      `gorm:"primaryKey"`
	Category  string    `gorm:"size:32;not null;index;uniqueIndex:idx_images_category_filename"`
	Filename  string    `gorm:"size:128;not null;uniqueIndex:idx_images_category_filename"`
	Title     string    `gorm:"size:128;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
