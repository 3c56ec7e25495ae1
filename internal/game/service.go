package game

import (
	"time"

	"fakeframe/internal/config"
	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
)

// Service carries all game operations. It holds no game state of its own;
// every invocation coordinates through the store's row-level constraints so
// any number of instances can run side by side.
type Service struct {
	store store.Store
	cfg   config.Config
	log   *logrus.Logger

	now     func() time.Time
	newCode func() string
}

func New(st store.Store, cfg config.Config, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		store:   st,
		cfg:     cfg,
		log:     log,
		now:     timeNowUTC,
		newCode: newRoomCode,
	}
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
