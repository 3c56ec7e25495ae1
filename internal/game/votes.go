package game

import (
	"context"
	"errors"

	"fakeframe/internal/db"
	"fakeframe/internal/store"
)

// CastVote records the caller's impostor accusation for the current round.
// One vote per player per round, and never for yourself.
func (s *Service) CastVote(ctx context.Context, roomRef string, userID string, votedForID uint) (*db.Vote, error) {
	room, err := s.ResolveRoom(ctx, roomRef)
	if err != nil {
		return nil, err
	}
	if room.Status != db.RoomStatusInProgress {
		return nil, conflictError("room is not in progress")
	}
	voter, err := s.store.FindPlayerByUser(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, authError("caller is not in this room")
		}
		return nil, internalError(err)
	}
	target, err := s.store.GetPlayer(ctx, votedForID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("player not found")
		}
		return nil, internalError(err)
	}
	if target.RoomID != room.ID {
		return nil, notFoundError("player is not in this room")
	}
	if target.ID == voter.ID {
		return nil, validationError("voted_for_id", "cannot vote for yourself")
	}

	now := s.now()
	vote := &db.Vote{
		RoomID:      room.ID,
		RoundNumber: room.CurrentRound,
		VoterID:     voter.ID,
		VotedForID:  target.ID,
		VotedAt:     now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictError("vote already cast for this round")
		}
		return nil, internalError(err)
	}
	s.recordEvent(ctx, room.ID, nil, &voter.ID, "vote_cast", eventPayload{RoundNumber: room.CurrentRound, VotedForID: target.ID})
	return vote, nil
}
