package store

import (
	"context"
	"errors"
	"time"

	"fakeframe/internal/db"
)

// Sentinel errors shared by every implementation. The game layer remaps these
// to its own error taxonomy; nothing above the store inspects driver errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence boundary for all game state. Implementations must
// enforce the unique constraints declared on the models in internal/db and
// report violations as ErrDuplicate; every method is safe to call concurrently.
type Store interface {
	CreateRoom(ctx context.Context, room *db.Room) error
	GetRoom(ctx context.Context, id uint) (*db.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*db.Room, error)
	UpdateRoom(ctx context.Context, id uint, fields map[string]any) error
	DeleteRoom(ctx context.Context, id uint) error
	ListStaleRooms(ctx context.Context, cutoff time.Time, limit int) ([]db.Room, error)

	CreatePlayer(ctx context.Context, player *db.Player) error
	GetPlayer(ctx context.Context, id uint) (*db.Player, error)
	FindPlayerByUser(ctx context.Context, roomID uint, userID string) (*db.Player, error)
	UpdatePlayer(ctx context.Context, id uint, fields map[string]any) error
	DeletePlayer(ctx context.Context, id uint) error
	ListPlayers(ctx context.Context, roomID uint) ([]db.Player, error)
	CountOnlinePlayers(ctx context.Context, roomID uint) (int64, error)
	FirstOnlinePlayer(ctx context.Context, roomID uint, excludeID uint) (*db.Player, error)
	DeletePlayersByRoom(ctx context.Context, roomID uint) error

	GetRound(ctx context.Context, id uint) (*db.Round, error)
	FindRound(ctx context.Context, roomID uint, number int) (*db.Round, error)
	UpsertRound(ctx context.Context, round *db.Round) error
	ListRounds(ctx context.Context, roomID uint) ([]db.Round, error)
	DeleteRoundsByRoom(ctx context.Context, roomID uint) error

	CreateCaption(ctx context.Context, caption *db.Caption) error
	DeleteCaptionsByRound(ctx context.Context, roundID uint) error

	CreateVote(ctx context.Context, vote *db.Vote) error
	DeleteVotesByRoom(ctx context.Context, roomID uint) error

	CreateImage(ctx context.Context, image *db.Image) error
	GetImage(ctx context.Context, id uint) (*db.Image, error)
	RandomCategory(ctx context.Context, minImages int) (string, error)
	RandomImages(ctx context.Context, category string, limit int) ([]db.Image, error)

	CreateEvent(ctx context.Context, event *db.Event) error
	DeleteEventsByRoom(ctx context.Context, roomID uint) error
}
