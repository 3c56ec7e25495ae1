package store

import (
	"context"
	"errors"
	"time"

	"fakeframe/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore backs the Store interface with Postgres through GORM. Uniqueness
// is enforced by the database; this layer only translates driver errors.
type GormStore struct {
	conn *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{conn: conn}
}

func (s *GormStore) CreateRoom(ctx context.Context, room *db.Room) error {
	return translate(s.conn.WithContext(ctx).Create(room).Error)
}

func (s *GormStore) GetRoom(ctx context.Context, id uint) (*db.Room, error) {
	var room db.Room
	if err := s.conn.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *GormStore) GetRoomByCode(ctx context.Context, code string) (*db.Room, error) {
	var room db.Room
	if err := s.conn.WithContext(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *GormStore) UpdateRoom(ctx context.Context, id uint, fields map[string]any) error {
	result := s.conn.WithContext(ctx).Model(&db.Room{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteRoom(ctx context.Context, id uint) error {
	return translate(s.conn.WithContext(ctx).Delete(&db.Room{}, id).Error)
}

func (s *GormStore) ListStaleRooms(ctx context.Context, cutoff time.Time, limit int) ([]db.Room, error) {
	var rooms []db.Room
	err := s.conn.WithContext(ctx).
		Where("status IN ?", []string{db.RoomStatusLobby, db.RoomStatusInProgress}).
		Where("last_heartbeat IS NULL OR last_heartbeat < ?", cutoff).
		Order("id").
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, translate(err)
	}
	return rooms, nil
}

func (s *GormStore) CreatePlayer(ctx context.Context, player *db.Player) error {
	return translate(s.conn.WithContext(ctx).Create(player).Error)
}

func (s *GormStore) GetPlayer(ctx context.Context, id uint) (*db.Player, error) {
	var player db.Player
	if err := s.conn.WithContext(ctx).First(&player, id).Error; err != nil {
		return nil, translate(err)
	}
	return &player, nil
}

func (s *GormStore) FindPlayerByUser(ctx context.Context, roomID uint, userID string) (*db.Player, error) {
	var player db.Player
	err := s.conn.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&player).Error
	if err != nil {
		return nil, translate(err)
	}
	return &player, nil
}

func (s *GormStore) UpdatePlayer(ctx context.Context, id uint, fields map[string]any) error {
	result := s.conn.WithContext(ctx).Model(&db.Player{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeletePlayer(ctx context.Context, id uint) error {
	return translate(s.conn.WithContext(ctx).Delete(&db.Player{}, id).Error)
}

func (s *GormStore) ListPlayers(ctx context.Context, roomID uint) ([]db.Player, error) {
	var players []db.Player
	err := s.conn.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at").
		Find(&players).Error
	if err != nil {
		return nil, translate(err)
	}
	return players, nil
}

func (s *GormStore) CountOnlinePlayers(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := s.conn.WithContext(ctx).
		Model(&db.Player{}).
		Where("room_id = ? AND is_online = ?", roomID, true).
		Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// FirstOnlinePlayer returns an arbitrary online player in the room other than
// excludeID. The ordering is stable only within one query.
func (s *GormStore) FirstOnlinePlayer(ctx context.Context, roomID uint, excludeID uint) (*db.Player, error) {
	var player db.Player
	err := s.conn.WithContext(ctx).
		Where("room_id = ? AND is_online = ? AND id <> ?", roomID, true, excludeID).
		Order("id").
		First(&player).Error
	if err != nil {
		return nil, translate(err)
	}
	return &player, nil
}

func (s *GormStore) DeletePlayersByRoom(ctx context.Context, roomID uint) error {
	return translate(s.conn.WithContext(ctx).Where("room_id = ?", roomID).Delete(&db.Player{}).Error)
}

func (s *GormStore) GetRound(ctx context.Context, id uint) (*db.Round, error) {
	var round db.Round
	if err := s.conn.WithContext(ctx).First(&round, id).Error; err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (s *GormStore) FindRound(ctx context.Context, roomID uint, number int) (*db.Round, error) {
	var round db.Round
	err := s.conn.WithContext(ctx).
		Where("room_id = ? AND number = ?", roomID, number).
		First(&round).Error
	if err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

// UpsertRound inserts the round or, when a row for (room_id, number) already
// exists, fills its assignment columns only if they are still unset. A complete
// assignment is immutable: a racing assigner that lost the insert must not swap
// images players have already seen. Callers re-read afterwards so everyone
// converges on the stored row.
func (s *GormStore) UpsertRound(ctx context.Context, round *db.Round) error {
	err := s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "number"}},
			DoUpdates: clause.AssignmentColumns([]string{"real_image_id", "fake_image_id", "deadline_at", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "rounds.real_image_id IS NULL OR rounds.fake_image_id IS NULL"},
			}},
		}).
		Create(round).Error
	return translate(err)
}

func (s *GormStore) ListRounds(ctx context.Context, roomID uint) ([]db.Round, error) {
	var rounds []db.Round
	err := s.conn.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("number").
		Find(&rounds).Error
	if err != nil {
		return nil, translate(err)
	}
	return rounds, nil
}

func (s *GormStore) DeleteRoundsByRoom(ctx context.Context, roomID uint) error {
	return translate(s.conn.WithContext(ctx).Where("room_id = ?", roomID).Delete(&db.Round{}).Error)
}

func (s *GormStore) CreateCaption(ctx context.Context, caption *db.Caption) error {
	return translate(s.conn.WithContext(ctx).Create(caption).Error)
}

func (s *GormStore) DeleteCaptionsByRound(ctx context.Context, roundID uint) error {
	return translate(s.conn.WithContext(ctx).Where("round_id = ?", roundID).Delete(&db.Caption{}).Error)
}

func (s *GormStore) CreateVote(ctx context.Context, vote *db.Vote) error {
	return translate(s.conn.WithContext(ctx).Create(vote).Error)
}

func (s *GormStore) DeleteVotesByRoom(ctx context.Context, roomID uint) error {
	return translate(s.conn.WithContext(ctx).Where("room_id = ?", roomID).Delete(&db.Vote{}).Error)
}

func (s *GormStore) CreateImage(ctx context.Context, image *db.Image) error {
	return translate(s.conn.WithContext(ctx).Create(image).Error)
}

func (s *GormStore) GetImage(ctx context.Context, id uint) (*db.Image, error) {
	var image db.Image
	if err := s.conn.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, translate(err)
	}
	return &image, nil
}

func (s *GormStore) RandomCategory(ctx context.Context, minImages int) (string, error) {
	var category string
	err := s.conn.WithContext(ctx).
		Model(&db.Image{}).
		Select("category").
		Where("active = ?", true).
		Group("category").
		Having("COUNT(*) >= ?", minImages).
		Order("random()").
		Limit(1).
		Scan(&category).Error
	if err != nil {
		return "", translate(err)
	}
	if category == "" {
		return "", ErrNotFound
	}
	return category, nil
}

func (s *GormStore) RandomImages(ctx context.Context, category string, limit int) ([]db.Image, error) {
	var images []db.Image
	err := s.conn.WithContext(ctx).
		Where("category = ? AND active = ?", category, true).
		Order("random()").
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, translate(err)
	}
	return images, nil
}

func (s *GormStore) CreateEvent(ctx context.Context, event *db.Event) error {
	return translate(s.conn.WithContext(ctx).Create(event).Error)
}

func (s *GormStore) DeleteEventsByRoom(ctx context.Context, roomID uint) error {
	return translate(s.conn.WithContext(ctx).Where("room_id = ?", roomID).Delete(&db.Event{}).Error)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return false
}
