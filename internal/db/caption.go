package db

import "time"

type Caption struct {
	ID          uint      `gorm:"primaryKey"`
	RoundID     uint      `gorm:"index;not null;uniqueIndex:idx_captions_round_player"`
	PlayerID    uint      `gorm:"index;not null;uniqueIndex:idx_captions_round_player"`
	Text        string    `gorm:"size:300;not null"`
	SubmittedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
