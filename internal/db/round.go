package db

import "time"

// Round image references are nullable so a half-assigned row left by a racing
// writer can be completed by the next assignment pass.
type Round struct {
	ID          uint       `gorm:"primaryKey"`
	RoomID      uint       `gorm:"index;not null;uniqueIndex:idx_rounds_room_number"`
	Number      int        `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	RealImageID *uint      `gorm:"index"`
	FakeImageID *uint      `gorm:"index"`
	DeadlineAt  *time.Time
	StartedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
	Captions    []Caption
}
