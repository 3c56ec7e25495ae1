package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fakeframe/internal/config"
	"fakeframe/internal/db"
	"fakeframe/internal/game"
	"fakeframe/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testReaperToken = "sweep-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	for i := 0; i < 4; i++ {
		err := st.CreateImage(context.Background(), &db.Image{
			Category: "animals",
			Filename: fmt.Sprintf("animals-%d.jpg", i),
			Title:    fmt.Sprintf("Animal %d", i),
			Active:   true,
		})
		require.NoError(t, err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.Default()
	cfg.ReaperToken = testReaperToken
	svc := game.New(st, cfg, log)
	return New(svc, cfg, log, nil).Router(), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newIdentity(t *testing.T, router *gin.Engine) (userID, token string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/identity", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	userID, _ = body["user_id"].(string)
	token, _ = body["token"].(string)
	require.NotEmpty(t, userID)
	require.NotEmpty(t, token)
	return userID, token
}

func TestIdentityIssuesUsableToken(t *testing.T) {
	router, _ := newTestRouter(t)
	_, token := newIdentity(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["code"], 6)
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFullGameFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	_, hostToken := newIdentity(t, router)
	_, guestToken := newIdentity(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", hostToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	code, _ := decodeBody(t, rec)["code"].(string)
	require.NotEmpty(t, code)

	// Both players join; the creator becomes host.
	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/join", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hostJoin := decodeBody(t, rec)
	hostPlayer := hostJoin["player"].(map[string]any)
	require.True(t, hostPlayer["is_host"].(bool))
	hostPlayerID := int(hostPlayer["id"].(float64))

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/join", guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	guestJoin := decodeBody(t, rec)
	guestPlayer := guestJoin["player"].(map[string]any)
	require.False(t, guestPlayer["is_host"].(bool))
	guestPlayerID := int(guestPlayer["id"].(float64))

	// The snapshot lists both players and never reveals the impostor.
	rec = doJSON(t, router, http.MethodGet, "/api/rooms/"+code, guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := decodeBody(t, rec)
	require.Len(t, snapshot["players"], 2)
	require.NotContains(t, snapshot, "impostor_user_id")

	// Only the host may start.
	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/start", guestToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/start", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	started := decodeBody(t, rec)
	require.Equal(t, "in_progress", started["status"])
	require.NotContains(t, started, "impostor_user_id")

	// Exactly one of the two sees the fake image.
	rec = doJSON(t, router, http.MethodGet, "/api/rooms/"+code+"/rounds/1", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hostView := decodeBody(t, rec)

	rec = doJSON(t, router, http.MethodGet, "/api/rooms/"+code+"/rounds/1", guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	guestView := decodeBody(t, rec)

	roles := []any{hostView["role"], guestView["role"]}
	require.Contains(t, roles, "impostor")
	require.Contains(t, roles, "player")
	require.NotEqual(t, hostView["url"], guestView["url"])
	require.Equal(t, hostView["category"], guestView["category"])

	roundID := int(hostView["round_id"].(float64))
	require.Equal(t, roundID, int(guestView["round_id"].(float64)))

	// Captions: one per player per round.
	roundPath := fmt.Sprintf("/api/rounds/%d/captions", roundID)
	rec = doJSON(t, router, http.MethodPost, roundPath, hostToken, gin.H{
		"player_id": hostPlayerID,
		"text":      "definitely the real one",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, roundPath, hostToken, gin.H{
		"player_id": hostPlayerID,
		"text":      "changed my mind",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Votes: no self-votes, one per round.
	votePath := "/api/rooms/" + code + "/votes"
	rec = doJSON(t, router, http.MethodPost, votePath, hostToken, gin.H{"voted_for_id": hostPlayerID})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, votePath, hostToken, gin.H{"voted_for_id": guestPlayerID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, votePath, hostToken, gin.H{"voted_for_id": guestPlayerID})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Host leaves; the guest inherits the room.
	leavePath := fmt.Sprintf("/api/players/%d/leave", hostPlayerID)
	rec = doJSON(t, router, http.MethodPost, leavePath, hostToken, gin.H{"force_delete": true})
	require.Equal(t, http.StatusOK, rec.Code)
	left := decodeBody(t, rec)
	require.Equal(t, "host_transferred", left["outcome"])
	require.Equal(t, guestPlayerID, int(left["new_host_id"].(float64)))

	// Last player out deletes the room and everything in it.
	leavePath = fmt.Sprintf("/api/players/%d/leave", guestPlayerID)
	rec = doJSON(t, router, http.MethodPost, leavePath, guestToken, gin.H{"force_delete": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "room_deleted", decodeBody(t, rec)["outcome"])

	rec = doJSON(t, router, http.MethodGet, "/api/rooms/"+code, guestToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeartbeatEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	_, token := newIdentity(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	code := decodeBody(t, rec)["code"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/join", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	playerID := int(decodeBody(t, rec)["player"].(map[string]any)["id"].(float64))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/players/%d/heartbeat", playerID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different identity cannot heartbeat someone else's player row.
	_, otherToken := newIdentity(t, router)
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/players/%d/heartbeat", playerID), otherToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransferHostEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	_, hostToken := newIdentity(t, router)
	_, guestToken := newIdentity(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", hostToken, nil)
	code := decodeBody(t, rec)["code"].(string)

	doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/join", hostToken, nil)
	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/join", guestToken, nil)
	guestPlayerID := int(decodeBody(t, rec)["player"].(map[string]any)["id"].(float64))

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/transfer-host", hostToken, gin.H{
		"new_player_id": guestPlayerID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, guestPlayerID, int(decodeBody(t, rec)["new_host_id"].(float64)))

	rec = doJSON(t, router, http.MethodGet, "/api/rooms/"+code, hostToken, nil)
	snapshot := decodeBody(t, rec)
	hosts := 0
	for _, entry := range snapshot["players"].([]any) {
		if entry.(map[string]any)["is_host"].(bool) {
			hosts++
		}
	}
	require.Equal(t, 1, hosts)
}

func TestReapEndpointRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/internal/reap", "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/internal/reap", nil)
	req.Header.Set("X-Reaper-Token", "wrong")
	wrong := httptest.NewRecorder()
	router.ServeHTTP(wrong, req)
	require.Equal(t, http.StatusForbidden, wrong.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal/reap", nil)
	req.Header.Set("X-Reaper-Token", testReaperToken)
	ok := httptest.NewRecorder()
	router.ServeHTTP(ok, req)
	require.Equal(t, http.StatusOK, ok.Code)

	var result game.SweepResult
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &result))
	require.Zero(t, result.Errors)
}

func TestMalformedRequestBodies(t *testing.T) {
	router, _ := newTestRouter(t)
	_, token := newIdentity(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", token, nil)
	code := decodeBody(t, rec)["code"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/votes", token, gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+code+"/transfer-host", token, gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/players/abc/heartbeat", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
