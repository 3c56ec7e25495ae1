package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService(t)
	room, err := svc.CreateRoom(context.Background(), "host")
	require.NoError(t, err)
	require.Len(t, room.Code, 6)
	require.Equal(t, "host", room.HostUserID)
	require.Equal(t, "lobby", room.Status)
	require.NotNil(t, room.LastHeartbeat)
}

func TestCreateRoomRetriesOnCodeCollision(t *testing.T) {
	svc, _ := newTestService(t)
	codes := []string{"SAMECD", "SAMECD", "OTHERC"}
	svc.newCode = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	first, err := svc.CreateRoom(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, "SAMECD", first.Code)

	second, err := svc.CreateRoom(context.Background(), "b")
	require.NoError(t, err)
	require.Equal(t, "OTHERC", second.Code)
}

func TestCreateRoomCodeExhaustion(t *testing.T) {
	svc, _ := newTestService(t)
	svc.newCode = func() string { return "SAMECD" }

	_, err := svc.CreateRoom(context.Background(), "a")
	require.NoError(t, err)

	_, err = svc.CreateRoom(context.Background(), "b")
	require.Error(t, err)
	require.Equal(t, KindInternal, KindOf(err))
}

func TestResolveRoomByIDAndCode(t *testing.T) {
	svc, _ := newTestService(t)
	room, err := svc.CreateRoom(context.Background(), "host")
	require.NoError(t, err)

	byID, err := svc.ResolveRoom(context.Background(), roomRef(room))
	require.NoError(t, err)
	require.Equal(t, room.ID, byID.ID)

	byCode, err := svc.ResolveRoom(context.Background(), room.Code)
	require.NoError(t, err)
	require.Equal(t, room.ID, byCode.ID)
}

func TestGetRoomByCodeNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetRoomByCode(context.Background(), "NOSUCH")
	require.Error(t, err)
	require.Equal(t, KindNotFound, KindOf(err))
}
