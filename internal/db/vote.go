package db

import "time"

type Vote struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      uint      `gorm:"index;not null;uniqueIndex:idx_votes_room_round_voter"`
	RoundNumber int       `gorm:"not null;uniqueIndex:idx_votes_room_round_voter"`
	VoterID     uint      `gorm:"index;not null;uniqueIndex:idx_votes_room_round_voter"`
	VotedForID  uint      `gorm:"index;not null"`
	VotedAt     time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
