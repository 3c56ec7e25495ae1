package game

import (
	"context"
	"errors"

	"fakeframe/internal/db"
	"fakeframe/internal/store"
)

// SubmitCaption records a player's caption for a round. Captions are
// immutable once accepted; a second submission is a conflict. A submission
// exactly at the deadline is accepted, rejection starts strictly after it.
func (s *Service) SubmitCaption(ctx context.Context, roundID uint, playerID uint, userID string, text string) (*db.Caption, error) {
	trimmed, err := validateCaption(text)
	if err != nil {
		return nil, err
	}
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("round not found")
		}
		return nil, internalError(err)
	}
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
	if player.RoomID != round.RoomID {
		return nil, authError("player is not in this round's room")
	}

	now := s.now()
	if round.DeadlineAt != nil && now.After(*round.DeadlineAt) {
		return nil, conflictError("caption deadline has passed")
	}

	caption := &db.Caption{
		RoundID:     round.ID,
		PlayerID:    player.ID,
		Text:        trimmed,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateCaption(ctx, caption); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictError("caption already submitted")
		}
		return nil, internalError(err)
	}
	s.recordEvent(ctx, round.RoomID, &round.ID, &player.ID, "caption_submitted", eventPayload{RoundNumber: round.Number})
	return caption, nil
}
