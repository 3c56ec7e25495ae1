package game

import (
	"context"
	"errors"
	"time"

	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
)

type SweepResult struct {
	Checked         int `json:"checked"`
	Emptied         int `json:"emptied"`
	MarkedCompleted int `json:"marked_completed"`
	Errors          int `json:"errors"`
}

// Sweep is the liveness reaper pass. It selects up to maxRooms live-looking
// rooms whose heartbeat is older than threshold (or absent), deletes the ones
// with no online players through the shared cascade and refreshes the
// heartbeat of the rest. One room's failure never stops the sweep, and the
// sweep is safe to run concurrently with itself and with player traffic: a
// reconnect that loses the race simply sees NotFound.
//
// Zero arguments fall back to configured defaults, which lets an external
// scheduler invoke it with no parameters at all.
func (s *Service) Sweep(ctx context.Context, threshold time.Duration, maxRooms int, now time.Time) SweepResult {
	if threshold <= 0 {
		threshold = time.Duration(s.cfg.ReapThresholdHours) * time.Hour
	}
	if maxRooms <= 0 {
		maxRooms = s.cfg.ReapMaxRooms
	}
	if now.IsZero() {
		now = s.now()
	}

	var result SweepResult
	rooms, err := s.store.ListStaleRooms(ctx, now.Add(-threshold), maxRooms)
	if err != nil {
		s.log.WithError(err).Error("stale room selection failed")
		result.Errors++
		return result
	}

	for _, room := range rooms {
		result.Checked++
		online, err := s.store.CountOnlinePlayers(ctx, room.ID)
		if err != nil {
			s.log.WithError(err).WithField("room_id", room.ID).Error("online count failed during sweep")
			result.Errors++
			continue
		}
		if online > 0 {
			// Alive after all; refresh so the next sweep skips it.
			err := s.store.UpdateRoom(ctx, room.ID, map[string]any{"last_heartbeat": now})
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				s.log.WithError(err).WithField("room_id", room.ID).Error("heartbeat refresh failed during sweep")
				result.Errors++
			}
			continue
		}
		deleted, err := s.deleteRoomCascade(ctx, room.ID)
		if err != nil {
			s.log.WithError(err).WithField("room_id", room.ID).Error("room reap failed")
			result.Errors++
			continue
		}
		if deleted {
			result.Emptied++
		} else {
			result.MarkedCompleted++
		}
		s.log.WithFields(logrus.Fields{
			"room_id": room.ID,
			"code":    room.Code,
			"deleted": deleted,
		}).Info("room reaped")
	}
	return result
}
