package store

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"fakeframe/internal/db"
)

// MemoryStore is an in-process Store used by tests and DB-less dev runs. It
// emulates the unique indexes the Postgres schema enforces so conflict paths
// behave the same against either backend.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   map[string]uint
	rooms    map[uint]*db.Room
	players  map[uint]*db.Player
	rounds   map[uint]*db.Round
	captions map[uint]*db.Caption
	votes    map[uint]*db.Vote
	images   map[uint]*db.Image
	events   map[uint]*db.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   make(map[string]uint),
		rooms:    make(map[uint]*db.Room),
		players:  make(map[uint]*db.Player),
		rounds:   make(map[uint]*db.Round),
		captions: make(map[uint]*db.Caption),
		votes:    make(map[uint]*db.Vote),
		images:   make(map[uint]*db.Image),
		events:   make(map[uint]*db.Event),
	}
}

func (s *MemoryStore) next(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *db.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rooms {
		if existing.Code == room.Code {
			return ErrDuplicate
		}
	}
	room.ID = s.next("rooms")
	clone := *room
	s.rooms[room.ID] = &clone
	return nil
}

func (s *MemoryStore) GetRoom(_ context.Context, id uint) (*db.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *room
	return &clone, nil
}

func (s *MemoryStore) GetRoomByCode(_ context.Context, code string) (*db.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.Code == code {
			clone := *room
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateRoom(_ context.Context, id uint, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			room.Status = value.(string)
		case "host_user_id":
			room.HostUserID = value.(string)
		case "current_round":
			room.CurrentRound = value.(int)
		case "impostor_user_id":
			v := value.(string)
			room.ImpostorUserID = &v
		case "started_at":
			v := asTime(value)
			room.StartedAt = &v
		case "completed_at":
			v := asTime(value)
			room.CompletedAt = &v
		case "last_heartbeat":
			v := asTime(value)
			room.LastHeartbeat = &v
		}
	}
	room.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) DeleteRoom(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) ListStaleRooms(_ context.Context, cutoff time.Time, limit int) ([]db.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rooms []db.Room
	for _, room := range s.rooms {
		if room.Status != db.RoomStatusLobby && room.Status != db.RoomStatusInProgress {
			continue
		}
		if room.LastHeartbeat != nil && !room.LastHeartbeat.Before(cutoff) {
			continue
		}
		rooms = append(rooms, *room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	if limit > 0 && len(rooms) > limit {
		rooms = rooms[:limit]
	}
	return rooms, nil
}

func (s *MemoryStore) CreatePlayer(_ context.Context, player *db.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.players {
		if existing.RoomID != player.RoomID {
			continue
		}
		if existing.UserID == player.UserID {
			return ErrDuplicate
		}
		if strings.EqualFold(existing.Alias, player.Alias) {
			return ErrDuplicate
		}
	}
	player.ID = s.next("players")
	clone := *player
	s.players[player.ID] = &clone
	return nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id uint) (*db.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *player
	return &clone, nil
}

func (s *MemoryStore) FindPlayerByUser(_ context.Context, roomID uint, userID string) (*db.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, player := range s.players {
		if player.RoomID == roomID && player.UserID == userID {
			clone := *player
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdatePlayer(_ context.Context, id uint, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "is_online":
			player.IsOnline = value.(bool)
		case "is_host":
			player.IsHost = value.(bool)
		case "last_seen":
			player.LastSeen = asTime(value)
		}
	}
	player.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) ListPlayers(_ context.Context, roomID uint) ([]db.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var players []db.Player
	for _, player := range s.players {
		if player.RoomID == roomID {
			players = append(players, *player)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

func (s *MemoryStore) CountOnlinePlayers(_ context.Context, roomID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, player := range s.players {
		if player.RoomID == roomID && player.IsOnline {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) FirstOnlinePlayer(_ context.Context, roomID uint, excludeID uint) (*db.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *db.Player
	for _, player := range s.players {
		if player.RoomID != roomID || !player.IsOnline || player.ID == excludeID {
			continue
		}
		if found == nil || player.ID < found.ID {
			found = player
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	clone := *found
	return &clone, nil
}

func (s *MemoryStore) DeletePlayersByRoom(_ context.Context, roomID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, player := range s.players {
		if player.RoomID == roomID {
			delete(s.players, id)
		}
	}
	return nil
}

func (s *MemoryStore) GetRound(_ context.Context, id uint) (*db.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *round
	return &clone, nil
}

func (s *MemoryStore) FindRound(_ context.Context, roomID uint, number int) (*db.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, round := range s.rounds {
		if round.RoomID == roomID && round.Number == number {
			clone := *round
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpsertRound(_ context.Context, round *db.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rounds {
		if existing.RoomID == round.RoomID && existing.Number == round.Number {
			// A complete assignment is immutable; only fill half-written rows.
			if existing.RealImageID == nil || existing.FakeImageID == nil {
				existing.RealImageID = round.RealImageID
				existing.FakeImageID = round.FakeImageID
				existing.DeadlineAt = round.DeadlineAt
				existing.UpdatedAt = time.Now().UTC()
			}
			round.ID = existing.ID
			return nil
		}
	}
	round.ID = s.next("rounds")
	clone := *round
	s.rounds[round.ID] = &clone
	return nil
}

func (s *MemoryStore) ListRounds(_ context.Context, roomID uint) ([]db.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rounds []db.Round
	for _, round := range s.rounds {
		if round.RoomID == roomID {
			rounds = append(rounds, *round)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

func (s *MemoryStore) DeleteRoundsByRoom(_ context.Context, roomID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, round := range s.rounds {
		if round.RoomID == roomID {
			delete(s.rounds, id)
		}
	}
	return nil
}

func (s *MemoryStore) CreateCaption(_ context.Context, caption *db.Caption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.captions {
		if existing.RoundID == caption.RoundID && existing.PlayerID == caption.PlayerID {
			return ErrDuplicate
		}
	}
	caption.ID = s.next("captions")
	clone := *caption
	s.captions[caption.ID] = &clone
	return nil
}

func (s *MemoryStore) DeleteCaptionsByRound(_ context.Context, roundID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, caption := range s.captions {
		if caption.RoundID == roundID {
			delete(s.captions, id)
		}
	}
	return nil
}

func (s *MemoryStore) CreateVote(_ context.Context, vote *db.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.votes {
		if existing.RoomID == vote.RoomID && existing.RoundNumber == vote.RoundNumber && existing.VoterID == vote.VoterID {
			return ErrDuplicate
		}
	}
	vote.ID = s.next("votes")
	clone := *vote
	s.votes[vote.ID] = &clone
	return nil
}

func (s *MemoryStore) DeleteVotesByRoom(_ context.Context, roomID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, vote := range s.votes {
		if vote.RoomID == roomID {
			delete(s.votes, id)
		}
	}
	return nil
}

func (s *MemoryStore) CreateImage(_ context.Context, image *db.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.images {
		if existing.Category == image.Category && existing.Filename == image.Filename {
			return ErrDuplicate
		}
	}
	image.ID = s.next("images")
	clone := *image
	s.images[image.ID] = &clone
	return nil
}

func (s *MemoryStore) GetImage(_ context.Context, id uint) (*db.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	image, ok := s.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *image
	return &clone, nil
}

func (s *MemoryStore) RandomCategory(_ context.Context, minImages int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, image := range s.images {
		if image.Active {
			counts[image.Category]++
		}
	}
	var eligible []string
	for category, count := range counts {
		if count >= minImages {
			eligible = append(eligible, category)
		}
	}
	if len(eligible) == 0 {
		return "", ErrNotFound
	}
	sort.Strings(eligible)
	return eligible[rand.Intn(len(eligible))], nil
}

func (s *MemoryStore) RandomImages(_ context.Context, category string, limit int) ([]db.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var images []db.Image
	for _, image := range s.images {
		if image.Active && image.Category == category {
			images = append(images, *image)
		}
	}
	rand.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}
	return images, nil
}

func (s *MemoryStore) CreateEvent(_ context.Context, event *db.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.next("events")
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *MemoryStore) DeleteEventsByRoom(_ context.Context, roomID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, event := range s.events {
		if event.RoomID == roomID {
			delete(s.events, id)
		}
	}
	return nil
}

func asTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}
