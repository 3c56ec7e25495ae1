package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"fakeframe/internal/db"
	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
)

// Round roles as seen by a viewer.
const (
	RoleImpostor = "impostor"
	RolePlayer   = "player"
)

// RoundView is what one player is allowed to see of a round.
type RoundView struct {
	RoundID    uint       `json:"round_id"`
	Number     int        `json:"number"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Role       string     `json:"role"`
	DeadlineAt *time.Time `json:"deadline_at,omitempty"`
}

// StartGame moves a lobby room to in_progress, designates the impostor among
// the online players and eagerly assigns round 1.
func (s *Service) StartGame(ctx context.Context, roomRef string, hostUserID string) (*db.Room, error) {
	room, err := s.ResolveRoom(ctx, roomRef)
	if err != nil {
		return nil, err
	}
	caller, err := s.store.FindPlayerByUser(ctx, room.ID, hostUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("caller is not in this room")
		}
		return nil, internalError(err)
	}
	if !caller.IsHost && room.HostUserID != hostUserID {
		return nil, authError("only the host can start the game")
	}
	if room.Status != db.RoomStatusLobby {
		return nil, conflictError("game already started")
	}

	players, err := s.store.ListPlayers(ctx, room.ID)
	if err != nil {
		return nil, internalError(err)
	}
	var online []db.Player
	for _, player := range players {
		if player.IsOnline {
			online = append(online, player)
		}
	}
	if len(online) < s.cfg.MinPlayersToStart {
		return nil, conflictError("not enough players to start")
	}

	impostor := online[rand.Intn(len(online))]
	now := s.now()
	err = s.store.UpdateRoom(ctx, room.ID, map[string]any{
		"status":           db.RoomStatusInProgress,
		"current_round":    1,
		"impostor_user_id": impostor.UserID,
		"started_at":       now,
		"last_heartbeat":   now,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("room not found")
		}
		return nil, internalError(err)
	}

	room.Status = db.RoomStatusInProgress
	room.CurrentRound = 1
	room.ImpostorUserID = &impostor.UserID
	room.StartedAt = &now
	room.LastHeartbeat = &now

	if _, err := s.ensureRound(ctx, room.ID, 1); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"room_id": room.ID,
		"players": len(online),
	}).Info("game started")
	s.recordEvent(ctx, room.ID, nil, &caller.ID, "game_started", eventPayload{OnlinePlayers: int64(len(online))})
	return room, nil
}

// RoundContent resolves what the viewer may see for the given round,
// assigning content on first fetch. The impostor receives the fake image,
// everyone else the real one; repeated fetches return the same item.
func (s *Service) RoundContent(ctx context.Context, roomRef string, number int, viewerUserID string) (RoundView, error) {
	room, err := s.ResolveRoom(ctx, roomRef)
	if err != nil {
		return RoundView{}, err
	}
	if room.Status != db.RoomStatusInProgress {
		return RoundView{}, conflictError("room is not in progress")
	}
	viewer, err := s.store.FindPlayerByUser(ctx, room.ID, viewerUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RoundView{}, authError("caller is not in this room")
		}
		return RoundView{}, internalError(err)
	}
	if number < 1 || number > room.CurrentRound {
		return RoundView{}, notFoundError("round not found")
	}

	round, err := s.ensureRound(ctx, room.ID, number)
	if err != nil {
		return RoundView{}, err
	}

	role := RolePlayer
	imageID := round.RealImageID
	if room.ImpostorUserID != nil && viewer.UserID == *room.ImpostorUserID {
		role = RoleImpostor
		imageID = round.FakeImageID
	}
	if imageID == nil {
		return RoundView{}, internalError(errors.New("round has no image assignment"))
	}
	image, err := s.store.GetImage(ctx, *imageID)
	if err != nil {
		return RoundView{}, internalError(err)
	}
	return RoundView{
		RoundID:    round.ID,
		Number:     round.Number,
		URL:        s.cfg.ImageBaseURL + image.Filename,
		Title:      image.Title,
		Category:   image.Category,
		Role:       role,
		DeadlineAt: round.DeadlineAt,
	}, nil
}

// ensureRound returns the round for (room, number), assigning content if the
// row is missing or half-written. After the upsert the stored row is re-read
// so concurrent assigners converge on the same pair.
func (s *Service) ensureRound(ctx context.Context, roomID uint, number int) (*db.Round, error) {
	existing, err := s.store.FindRound(ctx, roomID, number)
	if err == nil && existing.RealImageID != nil && existing.FakeImageID != nil {
		return existing, nil
	}
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, internalError(err)
		}
		existing = nil
	}

	category, err := s.store.RandomCategory(ctx, 2)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, conflictError("not enough images to assign this round")
		}
		return nil, internalError(err)
	}
	images, err := s.store.RandomImages(ctx, category, 2)
	if err != nil {
		return nil, internalError(err)
	}
	if len(images) < 2 {
		return nil, conflictError("not enough images to assign this round")
	}

	now := s.now()
	deadline := now.Add(time.Duration(s.cfg.CaptionSeconds) * time.Second)
	round := &db.Round{
		RoomID:      roomID,
		Number:      number,
		RealImageID: &images[0].ID,
		FakeImageID: &images[1].ID,
		DeadlineAt:  &deadline,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		round.StartedAt = existing.StartedAt
		if existing.DeadlineAt != nil {
			round.DeadlineAt = existing.DeadlineAt
		}
	}
	if err := s.store.UpsertRound(ctx, round); err != nil {
		return nil, internalError(err)
	}

	stored, err := s.store.FindRound(ctx, roomID, number)
	if err != nil {
		return nil, internalError(err)
	}
	s.log.WithFields(logrus.Fields{
		"room_id":  roomID,
		"number":   number,
		"category": category,
	}).Info("round assigned")
	return stored, nil
}
