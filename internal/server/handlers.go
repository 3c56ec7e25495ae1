package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type leaveRequest struct {
	ForceDelete bool `json:"force_delete"`
}

type transferRequest struct {
	NewPlayerID uint `json:"new_player_id" binding:"required"`
}

type voteRequest struct {
	VotedForID uint `json:"voted_for_id" binding:"required"`
}

type captionRequest struct {
	PlayerID uint   `json:"player_id" binding:"required"`
	Text     string `json:"text" binding:"required,max=300,caption"`
}

type reapRequest struct {
	ThresholdHours int `json:"threshold_hours"`
	MaxRooms       int `json:"max_rooms"`
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	if !s.enforceRateLimit(c, "create") {
		return
	}
	room, err := s.svc.CreateRoom(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"room_id": room.ID,
		"code":    room.Code,
	})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	room, err := s.svc.ResolveRoom(c.Request.Context(), c.Param("ref"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	players, err := s.svc.RoomPlayers(c.Request.Context(), room.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomSnapshot(room, players))
}

func (s *Server) handleJoin(c *gin.Context) {
	if !s.enforceRateLimit(c, "join") {
		return
	}
	room, player, reconnected, err := s.svc.JoinOrReconnect(c.Request.Context(), c.Param("ref"), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room": gin.H{
			"room_id":       room.ID,
			"code":          room.Code,
			"status":        room.Status,
			"current_round": room.CurrentRound,
		},
		"player":      playerPayload(player),
		"reconnected": reconnected,
	})
}

func (s *Server) handleStart(c *gin.Context) {
	room, err := s.svc.StartGame(c.Request.Context(), c.Param("ref"), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	players, err := s.svc.RoomPlayers(c.Request.Context(), room.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomSnapshot(room, players))
}

func (s *Server) handleRoundContent(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round number must be numeric", "field": "number"})
		return
	}
	view, err := s.svc.RoundContent(c.Request.Context(), c.Param("ref"), number, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleTransferHost(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_player_id is required", "field": "new_player_id"})
		return
	}
	result, err := s.svc.ExplicitTransfer(c.Request.Context(), c.Param("ref"), currentUser(c), req.NewPlayerID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	payload := gin.H{
		"new_host_id":      result.NewHostID,
		"new_host_user_id": result.NewHostUserID,
	}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "voted_for_id is required", "field": "voted_for_id"})
		return
	}
	vote, err := s.svc.CastVote(c.Request.Context(), c.Param("ref"), currentUser(c), req.VotedForID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"vote_id":      vote.ID,
		"round_number": vote.RoundNumber,
	})
}

func (s *Server) handleHeartbeat(c *gin.Context) {
	playerID, ok := parseID(c, "id")
	if !ok {
		return
	}
	player, err := s.svc.Heartbeat(c.Request.Context(), playerID, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": playerPayload(player)})
}

func (s *Server) handleLeave(c *gin.Context) {
	playerID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req leaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
	}
	result, err := s.svc.Leave(c.Request.Context(), playerID, currentUser(c), req.ForceDelete)
	if err != nil {
		s.respondError(c, err)
		return
	}
	payload := gin.H{"outcome": result.Outcome}
	if result.NewHostID != 0 {
		payload["new_host_id"] = result.NewHostID
		payload["new_host_user_id"] = result.NewHostUserID
	}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleCaption(c *gin.Context) {
	roundID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req captionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and text are required", "field": "text"})
		return
	}
	caption, err := s.svc.SubmitCaption(c.Request.Context(), roundID, req.PlayerID, currentUser(c), req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"caption_id":   caption.ID,
		"submitted_at": caption.SubmittedAt,
	})
}

// handleReap is for the external scheduler, not for player sessions. It is
// gated by a shared secret configured on both sides.
func (s *Server) handleReap(c *gin.Context) {
	if s.cfg.ReaperToken == "" || c.GetHeader("X-Reaper-Token") != s.cfg.ReaperToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var req reapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
	}
	result := s.svc.Sweep(
		c.Request.Context(),
		time.Duration(req.ThresholdHours)*time.Hour,
		req.MaxRooms,
		time.Time{},
	)
	c.JSON(http.StatusOK, result)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": param + " must be a positive integer", "field": param})
		return 0, false
	}
	return uint(id), true
}
