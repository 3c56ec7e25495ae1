package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCastVote(t *testing.T) {
	svc, st := newTestService(t)
	seedImages(t, st, "animals", 3)
	room, players := newRoomWithPlayers(t, svc, "alice", "bob")
	ctx := context.Background()

	_, err := svc.StartGame(ctx, roomRef(room), "host")
	require.NoError(t, err)

	vote, err := svc.CastVote(ctx, roomRef(room), "alice", players[2].ID)
	require.NoError(t, err)
	require.Equal(t, 1, vote.RoundNumber)
	require.Equal(t, players[1].ID, vote.VoterID)
	require.Equal(t, players[2].ID, vote.VotedForID)
}

func TestCastVoteTwiceInSameRound(t *testing.T) {
	svc, st := newTestService(t)
	seedImages(t, st, "animals", 3)
	room, players := newRoomWithPlayers(t, svc, "alice", "bob")
	ctx := context.Background()

	_, err := svc.StartGame(ctx, roomRef(room), "host")
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, roomRef(room), "alice", players[2].ID)
	require.NoError(t, err)

	// Changing the target does not help; the round vote is spent.
	_, err = svc.CastVote(ctx, roomRef(room), "alice", players[0].ID)
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestCastVoteForYourself(t *testing.T) {
	svc, st := newTestService(t)
	seedImages(t, st, "animals", 3)
	room, players := newRoomWithPlayers(t, svc, "alice")
	ctx := context.Background()

	_, err := svc.StartGame(ctx, roomRef(room), "host")
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, roomRef(room), "alice", players[1].ID)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
	require.Equal(t, "voted_for_id", FieldOf(err))
}

func TestCastVoteBeforeStart(t *testing.T) {
	svc, _ := newTestService(t)
	room, players := newRoomWithPlayers(t, svc, "alice")

	_, err := svc.CastVote(context.Background(), roomRef(room), "alice", players[0].ID)
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestCastVoteByOutsider(t *testing.T) {
	svc, st := newTestService(t)
	seedImages(t, st, "animals", 3)
	room, players := newRoomWithPlayers(t, svc, "alice")
	ctx := context.Background()

	_, err := svc.StartGame(ctx, roomRef(room), "host")
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, roomRef(room), "outsider", players[1].ID)
	require.Error(t, err)
	require.Equal(t, KindAuth, KindOf(err))
}

func TestCastVoteForPlayerInAnotherRoom(t *testing.T) {
	svc, st := newTestService(t)
	seedImages(t, st, "animals", 3)
	room, _ := newRoomWithPlayers(t, svc, "alice")
	ctx := context.Background()

	_, err := svc.StartGame(ctx, roomRef(room), "host")
	require.NoError(t, err)

	other, err := svc.CreateRoom(ctx, "stranger")
	require.NoError(t, err)
	_, stranger, _, err := svc.JoinOrReconnect(ctx, other.Code, "stranger")
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, roomRef(room), "alice", stranger.ID)
	require.Error(t, err)
	require.Equal(t, KindNotFound, KindOf(err))
}
