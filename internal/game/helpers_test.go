package game

import (
	"context"
	"fmt"
	"testing"

	"fakeframe/internal/config"
	"fakeframe/internal/db"
	"fakeframe/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(st, config.Default(), log), st
}

func seedImages(t *testing.T, st *store.MemoryStore, category string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		err := st.CreateImage(context.Background(), &db.Image{
			Category: category,
			Filename: fmt.Sprintf("%s-%d.jpg", category, i),
			Title:    fmt.Sprintf("%s %d", category, i),
			Active:   true,
		})
		require.NoError(t, err)
	}
}

// newRoomWithPlayers creates a room hosted by user "host" and joins the given
// extra users. Returns the room and all player rows, host first.
func newRoomWithPlayers(t *testing.T, svc *Service, users ...string) (*db.Room, []*db.Player) {
	t.Helper()
	ctx := context.Background()
	room, err := svc.CreateRoom(ctx, "host")
	require.NoError(t, err)

	var players []*db.Player
	_, hostPlayer, reconnected, err := svc.JoinOrReconnect(ctx, room.Code, "host")
	require.NoError(t, err)
	require.False(t, reconnected)
	require.True(t, hostPlayer.IsHost)
	players = append(players, hostPlayer)

	for _, user := range users {
		_, player, reconnected, err := svc.JoinOrReconnect(ctx, room.Code, user)
		require.NoError(t, err)
		require.False(t, reconnected)
		require.False(t, player.IsHost)
		players = append(players, player)
	}
	return room, players
}

func roomRef(room *db.Room) string {
	return fmt.Sprint(room.ID)
}

// onlineHostCount counts online players flagged as host, the invariant every
// join/leave/transfer sequence must preserve.
func onlineHostCount(t *testing.T, svc *Service, roomID uint) (hosts int, online int) {
	t.Helper()
	players, err := svc.RoomPlayers(context.Background(), roomID)
	require.NoError(t, err)
	for _, player := range players {
		if !player.IsOnline {
			continue
		}
		online++
		if player.IsHost {
			hosts++
		}
	}
	return hosts, online
}
