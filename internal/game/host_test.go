package game

import (
	"context"
	"errors"
	"testing"

	"fakeframe/internal/store"

	"github.com/stretchr/testify/require"
)

// hostRefFailStore simulates the room-row write failing after the
// player-level host swap succeeded.
type hostRefFailStore struct {
	store.Store
}

func (f *hostRefFailStore) UpdateRoom(ctx context.Context, id uint, fields map[string]any) error {
	if _, ok := fields["host_user_id"]; ok {
		return errors.New("simulated write failure")
	}
	return f.Store.UpdateRoom(ctx, id, fields)
}

func TestHostLeaveTransfersToAnotherPlayer(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice", "bob")

	result, err := svc.Leave(context.Background(), players[0].ID, "host", true)
	require.NoError(t, err)
	require.Equal(t, OutcomeHostTransferred, result.Outcome)
	require.Contains(t, []uint{players[1].ID, players[2].ID}, result.NewHostID)
	require.Empty(t, result.Warning)

	refreshed, err := svc.GetRoom(context.Background(), room.ID)
	require.NoError(t, err)
	require.Equal(t, result.NewHostUserID, refreshed.HostUserID)

	hosts, online := onlineHostCount(t, svc, room.ID)
	require.Equal(t, 1, hosts)
	require.Equal(t, 2, online)
}

func TestLastPlayerLeavingDeletesRoom(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice", "bob")
	code := room.Code
	ctx := context.Background()

	// Host leaves, one of alice/bob inherits the room.
	_, err := svc.Leave(ctx, players[0].ID, "host", true)
	require.NoError(t, err)

	_, err = svc.Leave(ctx, players[2].ID, "bob", true)
	require.NoError(t, err)

	result, err := svc.Leave(ctx, players[1].ID, "alice", true)
	require.NoError(t, err)
	require.Equal(t, OutcomeRoomDeleted, result.Outcome)

	_, err = svc.GetRoomByCode(ctx, code)
	require.Error(t, err)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestNonHostSoftLeaveKeepsRow(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice")

	result, err := svc.Leave(context.Background(), players[1].ID, "alice", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeOffline, result.Outcome)

	roster, err := svc.RoomPlayers(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	hosts, online := onlineHostCount(t, svc, room.ID)
	require.Equal(t, 1, hosts)
	require.Equal(t, 1, online)
}

func TestLastOnlineNonHostLeavingDeletesRoom(t *testing.T) {
	svc, st := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice")
	ctx := context.Background()

	// Simulate the host dropping offline without a handoff (e.g. a crashed
	// client). Alice is then the last online player even though she never
	// held host status; her departure must still tear the room down.
	require.NoError(t, st.UpdatePlayer(ctx, players[0].ID, map[string]any{"is_online": false}))

	result, err := svc.Leave(ctx, players[1].ID, "alice", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeRoomDeleted, result.Outcome)

	_, err = svc.GetRoom(ctx, room.ID)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestLeaveOwnershipMismatch(t *testing.T) {
	svc, _ := newTestService(t)
	_, players := newRoomWithPlayers(t, svc, "alice")

	_, err := svc.Leave(context.Background(), players[1].ID, "mallory", false)
	require.Error(t, err)
	require.Equal(t, KindAuth, KindOf(err))
}

func TestHostLeaveWarnsWhenRoomRefUpdateFails(t *testing.T) {
	svc, st := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice")
	svc.store = &hostRefFailStore{Store: st}

	result, err := svc.Leave(context.Background(), players[0].ID, "host", true)
	require.NoError(t, err)
	require.Equal(t, OutcomeHostTransferred, result.Outcome)
	require.NotEmpty(t, result.Warning)

	// The player-level flag is the primary signal and must have moved.
	hosts, _ := onlineHostCount(t, svc, room.ID)
	require.Equal(t, 1, hosts)
}

func TestExplicitTransfer(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice")

	result, err := svc.ExplicitTransfer(context.Background(), roomRef(room), "host", players[1].ID)
	require.NoError(t, err)
	require.Equal(t, players[1].ID, result.NewHostID)
	require.Equal(t, "alice", result.NewHostUserID)
	require.Empty(t, result.Warning)

	refreshed, err := svc.GetRoom(context.Background(), room.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", refreshed.HostUserID)

	hosts, online := onlineHostCount(t, svc, room.ID)
	require.Equal(t, 1, hosts)
	require.Equal(t, 2, online)
}

func TestExplicitTransferByNonHost(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice", "bob")

	_, err := svc.ExplicitTransfer(context.Background(), roomRef(room), "alice", players[2].ID)
	require.Error(t, err)
	require.Equal(t, KindAuth, KindOf(err))
}

func TestExplicitTransferToOfflinePlayer(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice", "bob")

	_, err := svc.Leave(context.Background(), players[1].ID, "alice", false)
	require.NoError(t, err)

	_, err = svc.ExplicitTransfer(context.Background(), roomRef(room), "host", players[1].ID)
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestExplicitTransferWarnsWhenRoomRefUpdateFails(t *testing.T) {
	svc, st := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice")
	svc.store = &hostRefFailStore{Store: st}

	result, err := svc.ExplicitTransfer(context.Background(), roomRef(room), "host", players[1].ID)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warning)

	hosts, _ := onlineHostCount(t, svc, room.ID)
	require.Equal(t, 1, hosts)
}
