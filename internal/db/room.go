package db

import "time"

// Room status values. Transitions only move forward: lobby -> in_progress -> completed.
const (
	RoomStatusLobby      = "lobby"
	RoomStatusInProgress = "in_progress"
	RoomStatusCompleted  = "completed"
)

type Room struct {
	ID             uint       `gorm:"primaryKey"`
	Code           string     `gorm:"size:12;uniqueIndex;not null"`
	HostUserID     string     `gorm:"size:64;not null"`
	Status         string     `gorm:"size:32;not null"`
	CurrentRound   int        `gorm:"not null;default:0"`
	ImpostorUserID *string    `gorm:"size:64"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	LastHeartbeat  *time.Time `gorm:"index"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
	Players        []Player
	Rounds         []Round
	Votes          []Vote
	Events         []Event
}
