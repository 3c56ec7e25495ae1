package game

import (
	"context"
	"errors"

	"fakeframe/internal/db"
	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
)

const maxAliasAttempts = 5

// JoinOrReconnect returns the caller's player row in the room, creating it on
// first join. The reconnect path is idempotent: calling it any number of times
// with the same (room, user) yields the same row.
func (s *Service) JoinOrReconnect(ctx context.Context, roomRef string, userID string) (*db.Room, *db.Player, bool, error) {
	if userID == "" {
		return nil, nil, false, validationError("user_id", "user id is required")
	}
	room, err := s.ResolveRoom(ctx, roomRef)
	if err != nil {
		return nil, nil, false, err
	}

	if existing, err := s.store.FindPlayerByUser(ctx, room.ID, userID); err == nil {
		if room.Status == db.RoomStatusCompleted {
			return nil, nil, false, conflictError("game already ended")
		}
		player, err := s.reconnect(ctx, room, existing)
		if err != nil {
			return nil, nil, false, err
		}
		return room, player, true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, false, internalError(err)
	}

	if room.Status != db.RoomStatusLobby {
		return nil, nil, false, conflictError("game already started")
	}

	player, reconnected, err := s.insertPlayer(ctx, room, userID)
	if err != nil {
		return nil, nil, false, err
	}
	if reconnected {
		// A concurrent join by the same user won the insert race.
		return room, player, true, nil
	}
	s.log.WithFields(logrus.Fields{
		"room_id":   room.ID,
		"player_id": player.ID,
		"alias":     player.Alias,
	}).Info("player joined")
	s.recordEvent(ctx, room.ID, nil, &player.ID, "player_joined", eventPayload{Alias: player.Alias})
	return room, player, false, nil
}

func (s *Service) reconnect(ctx context.Context, room *db.Room, player *db.Player) (*db.Player, error) {
	now := s.now()
	err := s.store.UpdatePlayer(ctx, player.ID, map[string]any{
		"is_online": true,
		"last_seen": now,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Reaped between lookup and update; the caller re-fetches state.
			return nil, notFoundError("player no longer exists")
		}
		return nil, internalError(err)
	}
	s.touchRoom(ctx, room.ID)
	player.IsOnline = true
	player.LastSeen = now
	return player, nil
}

// insertPlayer creates the player row, retrying alias generation on a
// uniqueness conflict. A conflict may also mean another request won the join
// race for the same user, so the user lookup is re-run before retrying; that
// path reports reconnected=true since the user already holds a row.
func (s *Service) insertPlayer(ctx context.Context, room *db.Room, userID string) (*db.Player, bool, error) {
	now := s.now()
	for attempt := 0; attempt <= maxAliasAttempts; attempt++ {
		alias := randomAlias()
		if attempt == maxAliasAttempts {
			alias = fallbackAlias()
		}
		player := &db.Player{
			RoomID:    room.ID,
			UserID:    userID,
			Alias:     alias,
			IsHost:    userID == room.HostUserID,
			IsOnline:  true,
			JoinedAt:  now,
			LastSeen:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := s.store.CreatePlayer(ctx, player)
		if err == nil {
			s.touchRoom(ctx, room.ID)
			return player, false, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, false, internalError(err)
		}
		if existing, lookupErr := s.store.FindPlayerByUser(ctx, room.ID, userID); lookupErr == nil {
			player, err := s.reconnect(ctx, room, existing)
			if err != nil {
				return nil, false, err
			}
			return player, true, nil
		}
	}
	return nil, false, conflictError("could not allocate a unique alias")
}

// Heartbeat refreshes the caller's liveness. The player row must still exist
// and belong to the caller.
func (s *Service) Heartbeat(ctx context.Context, playerID uint, userID string) (*db.Player, error) {
	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("player not found")
		}
		return nil, internalError(err)
	}
	if player.UserID != userID {
		return nil, authError("player does not belong to caller")
	}
	now := s.now()
	err = s.store.UpdatePlayer(ctx, player.ID, map[string]any{
		"is_online": true,
		"last_seen": now,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("player not found")
		}
		return nil, internalError(err)
	}
	s.touchRoom(ctx, player.RoomID)
	player.IsOnline = true
	player.LastSeen = now
	return player, nil
}

// touchRoom refreshes the room heartbeat so the reaper does not select an
// actively played room. Best effort: the room may already be gone.
func (s *Service) touchRoom(ctx context.Context, roomID uint) {
	if err := s.store.UpdateRoom(ctx, roomID, map[string]any{"last_heartbeat": s.now()}); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.WithError(err).WithField("room_id", roomID).Warn("room heartbeat update failed")
	}
}

func (s *Service) removePlayer(ctx context.Context, playerID uint) error {
	return s.store.DeletePlayer(ctx, playerID)
}
