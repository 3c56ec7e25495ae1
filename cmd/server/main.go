package main

import (
	"fakeframe/internal/config"
	"fakeframe/internal/db"
	"fakeframe/internal/game"
	"fakeframe/internal/server"
	"fakeframe/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := config.LoadDotEnv(".env"); err != nil {
		log.WithError(err).Warn("failed to load .env")
	}
	cfg := config.Load()

	var st store.Store
	conn, err := db.Open()
	if err != nil {
		log.WithError(err).Warn("postgres unavailable, using in-memory store; state will not survive a restart")
		st = store.NewMemoryStore()
	} else {
		if err := db.Configure(conn, cfg); err != nil {
			log.WithError(err).Fatal("database pool configuration failed")
		}
		if err := db.Migrate(conn); err != nil {
			log.WithError(err).Fatal("database migration failed")
		}
		st = store.NewGormStore(conn)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	svc := game.New(st, cfg, log)
	srv := server.New(svc, cfg, log, rdb)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("fakeframe server listening")
	if err := srv.Router().Run(addr); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
