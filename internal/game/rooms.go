package game

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"

	"fakeframe/internal/db"
	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
)

const maxCodeAttempts = 5

// newRoomCode generates a six-character code over an alphabet with no
// ambiguous characters. Collisions are caught by the unique index on insert,
// not by a pre-check.
func newRoomCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

// CreateRoom creates a lobby room hosted by hostUserID, regenerating the code
// a bounded number of times if another room already holds it.
func (s *Service) CreateRoom(ctx context.Context, hostUserID string) (*db.Room, error) {
	if hostUserID == "" {
		return nil, validationError("user_id", "user id is required")
	}
	now := s.now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		room := &db.Room{
			Code:          s.newCode(),
			HostUserID:    hostUserID,
			Status:        db.RoomStatusLobby,
			LastHeartbeat: &now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err := s.store.CreateRoom(ctx, room)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"room_id": room.ID,
				"code":    room.Code,
			}).Info("room created")
			s.recordEvent(ctx, room.ID, nil, nil, "room_created", eventPayload{Code: room.Code})
			return room, nil
		}
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		return nil, internalError(err)
	}
	return nil, internalError(errors.New("room code space exhausted"))
}

func (s *Service) GetRoom(ctx context.Context, id uint) (*db.Room, error) {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("room not found")
		}
		return nil, internalError(err)
	}
	return room, nil
}

func (s *Service) GetRoomByCode(ctx context.Context, code string) (*db.Room, error) {
	room, err := s.store.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("room not found")
		}
		return nil, internalError(err)
	}
	return room, nil
}

// RoomPlayers lists the room's roster, oldest join first.
func (s *Service) RoomPlayers(ctx context.Context, roomID uint) ([]db.Player, error) {
	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, internalError(err)
	}
	return players, nil
}

// ResolveRoom accepts either a numeric room id or a join code.
func (s *Service) ResolveRoom(ctx context.Context, ref string) (*db.Room, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, validationError("room", "room reference is required")
	}
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		return s.GetRoom(ctx, uint(id))
	}
	return s.GetRoomByCode(ctx, ref)
}
