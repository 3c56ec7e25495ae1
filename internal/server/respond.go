package server

import (
	"net/http"

	"fakeframe/internal/db"
	"fakeframe/internal/game"

	"github.com/gin-gonic/gin"
)

func (s *Server) respondError(c *gin.Context, err error) {
	switch game.KindOf(err) {
	case game.KindValidation:
		payload := gin.H{"error": err.Error()}
		if field := game.FieldOf(err); field != "" {
			payload["field"] = field
		}
		c.JSON(http.StatusBadRequest, payload)
	case game.KindAuth:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case game.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case game.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func roomSnapshot(room *db.Room, players []db.Player) gin.H {
	roster := make([]gin.H, 0, len(players))
	for _, player := range players {
		roster = append(roster, gin.H{
			"id":        player.ID,
			"alias":     player.Alias,
			"is_host":   player.IsHost,
			"is_online": player.IsOnline,
		})
	}
	return gin.H{
		"room_id":       room.ID,
		"code":          room.Code,
		"status":        room.Status,
		"current_round": room.CurrentRound,
		"players":       roster,
	}
}

func playerPayload(player *db.Player) gin.H {
	return gin.H{
		"id":        player.ID,
		"room_id":   player.RoomID,
		"alias":     player.Alias,
		"is_host":   player.IsHost,
		"is_online": player.IsOnline,
		"last_seen": player.LastSeen,
	}
}
