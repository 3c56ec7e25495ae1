package game

import (
	"context"
	"encoding/json"

	"fakeframe/internal/db"

	"gorm.io/datatypes"
)

type eventPayload struct {
	Code          string `json:"code,omitempty"`
	Alias         string `json:"alias,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
	RoundNumber   int    `json:"round_number,omitempty"`
	NewHostID     uint   `json:"new_host_id,omitempty"`
	VotedForID    uint   `json:"voted_for_id,omitempty"`
	OnlinePlayers int64  `json:"online_players,omitempty"`
}

// recordEvent writes a best-effort audit row. Failures are logged and never
// fail the operation that produced the event.
func (s *Service) recordEvent(ctx context.Context, roomID uint, roundID, playerID *uint, eventType string, payload eventPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).WithField("event_type", eventType).Warn("event payload marshal failed")
		return
	}
	event := &db.Event{
		RoomID:    roomID,
		RoundID:   roundID,
		PlayerID:  playerID,
		Type:      eventType,
		Payload:   datatypes.JSON(raw),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		s.log.WithError(err).WithField("event_type", eventType).Warn("event write failed")
	}
}
