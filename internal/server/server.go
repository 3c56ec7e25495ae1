package server

import (
	"time"

	"fakeframe/internal/config"
	"fakeframe/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Server struct {
	svc     *game.Service
	cfg     config.Config
	log     *logrus.Logger
	limiter *rateLimiter
}

func New(svc *game.Service, cfg config.Config, log *logrus.Logger, rdb *redis.Client) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		svc:     svc,
		cfg:     cfg,
		log:     log,
		limiter: newRateLimiter(rdb),
	}
}

func (s *Server) Router() *gin.Engine {
	registerValidators()
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	api := router.Group("/api")
	api.POST("/identity", s.handleIdentity)

	authed := api.Group("", s.requireUser())
	authed.POST("/rooms", s.handleCreateRoom)
	authed.GET("/rooms/:ref", s.handleGetRoom)
	authed.POST("/rooms/:ref/join", s.handleJoin)
	authed.POST("/rooms/:ref/start", s.handleStart)
	authed.GET("/rooms/:ref/rounds/:number", s.handleRoundContent)
	authed.POST("/rooms/:ref/transfer-host", s.handleTransferHost)
	authed.POST("/rooms/:ref/votes", s.handleVote)
	authed.POST("/players/:id/heartbeat", s.handleHeartbeat)
	authed.POST("/players/:id/leave", s.handleLeave)
	authed.POST("/rounds/:id/captions", s.handleCaption)

	router.POST("/internal/reap", s.handleReap)
	return router
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"remote":   c.ClientIP(),
		}).Info("http request")
	}
}
