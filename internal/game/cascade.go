package game

import (
	"context"
	"errors"

	"fakeframe/internal/db"
	"fakeframe/internal/store"
)

// deleteRoomCascade removes a room and everything it owns, strictly leaves
// first: captions, votes, rounds, players, events, then the room itself. Each
// step is idempotent, so a sequence that failed partway can be re-driven by a
// later leave or sweep without leaving a child row referencing a deleted
// parent.
//
// Returns deleted=false without error when the final room delete failed and
// the room was marked completed instead, which keeps it out of future sweeps.
func (s *Service) deleteRoomCascade(ctx context.Context, roomID uint) (bool, error) {
	rounds, err := s.store.ListRounds(ctx, roomID)
	if err != nil {
		return false, err
	}
	for _, round := range rounds {
		if err := s.store.DeleteCaptionsByRound(ctx, round.ID); err != nil {
			return false, err
		}
	}
	if err := s.store.DeleteVotesByRoom(ctx, roomID); err != nil {
		return false, err
	}
	if err := s.store.DeleteRoundsByRoom(ctx, roomID); err != nil {
		return false, err
	}
	if err := s.store.DeletePlayersByRoom(ctx, roomID); err != nil {
		return false, err
	}
	if err := s.store.DeleteEventsByRoom(ctx, roomID); err != nil {
		return false, err
	}
	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Warn("room delete failed, marking completed")
		markErr := s.store.UpdateRoom(ctx, roomID, map[string]any{
			"status":       db.RoomStatusCompleted,
			"completed_at": s.now(),
		})
		if markErr != nil && !errors.Is(markErr, store.ErrNotFound) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
