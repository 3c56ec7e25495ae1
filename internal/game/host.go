package game

import (
	"context"
	"errors"

	"fakeframe/internal/db"
	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
)

// Leave outcomes.
const (
	OutcomeOffline         = "offline_marked"
	OutcomeRemoved         = "player_removed"
	OutcomeHostTransferred = "host_transferred"
	OutcomeRoomDeleted     = "room_deleted"
)

const maxTransferAttempts = 3

type LeaveResult struct {
	Outcome       string
	NewHostID     uint
	NewHostUserID string
	Warning       string
}

type TransferResult struct {
	NewHostID     uint
	NewHostUserID string
	Warning       string
}

// Leave clears a player from their room. Departing hosts hand authority to an
// arbitrary other online player; the last online player leaving tears the
// whole room down through the same cascade the reaper uses.
//
// The transfer is a sequence of independent writes, not a transaction. When a
// later write fails after the player-level host flag was already moved, the
// result carries a warning instead of an error: the player flag is the
// primary signal and the room's host reference a denormalized cache.
func (s *Service) Leave(ctx context.Context, playerID uint, userID string, force bool) (LeaveResult, error) {
	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LeaveResult{}, notFoundError("player not found")
		}
		return LeaveResult{}, internalError(err)
	}
	if player.UserID != userID {
		return LeaveResult{}, authError("player does not belong to caller")
	}

	room, err := s.store.GetRoom(ctx, player.RoomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Room reaped underneath us; clear the straggler row.
			if err := s.removePlayer(ctx, player.ID); err != nil {
				return LeaveResult{}, internalError(err)
			}
			return LeaveResult{Outcome: OutcomeRemoved}, nil
		}
		return LeaveResult{}, internalError(err)
	}

	isHost := player.IsHost || room.HostUserID == player.UserID
	if isHost {
		return s.leaveAsHost(ctx, room, player, force)
	}
	return s.leaveAsGuest(ctx, room, player, force)
}

func (s *Service) leaveAsHost(ctx context.Context, room *db.Room, player *db.Player, force bool) (LeaveResult, error) {
	for attempt := 0; attempt < maxTransferAttempts; attempt++ {
		replacement, err := s.store.FirstOnlinePlayer(ctx, room.ID, player.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Host alone in the room: terminal path.
			return s.deleteRoomForLeave(ctx, room.ID)
		}
		if err != nil {
			return LeaveResult{}, internalError(err)
		}

		err = s.store.UpdatePlayer(ctx, replacement.ID, map[string]any{"is_host": true})
		if errors.Is(err, store.ErrNotFound) {
			// Replacement left in the meantime; pick again.
			continue
		}
		if err != nil {
			return LeaveResult{}, internalError(err)
		}

		result := LeaveResult{
			Outcome:       OutcomeHostTransferred,
			NewHostID:     replacement.ID,
			NewHostUserID: replacement.UserID,
		}
		if err := s.store.UpdateRoom(ctx, room.ID, map[string]any{"host_user_id": replacement.UserID}); err != nil {
			s.log.WithError(err).WithField("room_id", room.ID).Warn("room host reference not updated")
			result.Warning = "host transferred, but the room host reference was not updated"
		}
		if err := s.clearDeparting(ctx, player.ID, force); err != nil {
			s.log.WithError(err).WithField("player_id", player.ID).Warn("departing host cleanup failed")
			if result.Warning == "" {
				result.Warning = "host transferred, but the departing player was not cleared"
			}
		}
		s.log.WithFields(logrus.Fields{
			"room_id":     room.ID,
			"new_host_id": replacement.ID,
		}).Info("host transferred on departure")
		s.recordEvent(ctx, room.ID, nil, &player.ID, "host_transferred", eventPayload{NewHostID: replacement.ID})
		return result, nil
	}
	return LeaveResult{}, conflictError("host transfer is not possible right now")
}

func (s *Service) leaveAsGuest(ctx context.Context, room *db.Room, player *db.Player, force bool) (LeaveResult, error) {
	if err := s.clearDeparting(ctx, player.ID, force); err != nil {
		return LeaveResult{}, internalError(err)
	}

	online, err := s.store.CountOnlinePlayers(ctx, room.ID)
	if err != nil {
		return LeaveResult{}, internalError(err)
	}
	if online == 0 {
		// Last online player gone: same terminal path as a lone host leaving.
		return s.deleteRoomForLeave(ctx, room.ID)
	}

	outcome := OutcomeOffline
	if force {
		outcome = OutcomeRemoved
	}
	s.recordEvent(ctx, room.ID, nil, &player.ID, "player_left", eventPayload{Outcome: outcome})
	return LeaveResult{Outcome: outcome}, nil
}

func (s *Service) clearDeparting(ctx context.Context, playerID uint, force bool) error {
	if force {
		return s.removePlayer(ctx, playerID)
	}
	err := s.store.UpdatePlayer(ctx, playerID, map[string]any{
		"is_host":   false,
		"is_online": false,
		"last_seen": s.now(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) deleteRoomForLeave(ctx context.Context, roomID uint) (LeaveResult, error) {
	deleted, err := s.deleteRoomCascade(ctx, roomID)
	if err != nil {
		return LeaveResult{}, internalError(err)
	}
	result := LeaveResult{Outcome: OutcomeRoomDeleted}
	if !deleted {
		result.Warning = "room could not be deleted and was marked completed"
	}
	s.log.WithField("room_id", roomID).Info("room deleted after last player left")
	return result, nil
}

// ExplicitTransfer hands host authority to a chosen player, initiated by the
// current host rather than by a departure. Host status is cross-checked
// against both the room's host reference and the caller's player row, since
// the two can drift.
func (s *Service) ExplicitTransfer(ctx context.Context, roomRef string, currentHostUserID string, newPlayerID uint) (TransferResult, error) {
	room, err := s.ResolveRoom(ctx, roomRef)
	if err != nil {
		return TransferResult{}, err
	}
	caller, err := s.store.FindPlayerByUser(ctx, room.ID, currentHostUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TransferResult{}, notFoundError("caller is not in this room")
		}
		return TransferResult{}, internalError(err)
	}
	if !caller.IsHost && room.HostUserID != currentHostUserID {
		return TransferResult{}, authError("only the host can transfer host status")
	}

	target, err := s.store.GetPlayer(ctx, newPlayerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TransferResult{}, notFoundError("player not found")
		}
		return TransferResult{}, internalError(err)
	}
	if target.RoomID != room.ID {
		return TransferResult{}, notFoundError("player is not in this room")
	}
	if target.UserID == currentHostUserID {
		return TransferResult{}, conflictError("player is already the host")
	}
	if !target.IsOnline {
		return TransferResult{}, conflictError("player is offline")
	}

	if err := s.store.UpdatePlayer(ctx, target.ID, map[string]any{"is_host": true}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TransferResult{}, conflictError("player left before the transfer completed")
		}
		return TransferResult{}, internalError(err)
	}

	result := TransferResult{NewHostID: target.ID, NewHostUserID: target.UserID}
	if err := s.store.UpdatePlayer(ctx, caller.ID, map[string]any{"is_host": false}); err != nil {
		s.log.WithError(err).WithField("player_id", caller.ID).Warn("previous host flag not cleared")
		result.Warning = "host transferred, but the previous host flag was not cleared"
	}
	if err := s.store.UpdateRoom(ctx, room.ID, map[string]any{"host_user_id": target.UserID}); err != nil {
		s.log.WithError(err).WithField("room_id", room.ID).Warn("room host reference not updated")
		if result.Warning == "" {
			result.Warning = "host transferred, but the room host reference was not updated"
		}
	}
	s.recordEvent(ctx, room.ID, nil, &caller.ID, "host_transferred", eventPayload{NewHostID: target.ID})
	return result, nil
}
