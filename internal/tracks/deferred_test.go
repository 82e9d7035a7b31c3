package tracks_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/tracks"
	"github.com/nhle/tracks/tests/testutil"
)

func TestFindAndActivateReady(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	now := time.Now().UTC()

	past := testutil.CreateTodo(t, s, u.ID, c.ID, "past", testutil.DeferredUntil(now.Add(-24*time.Hour)))
	exact := testutil.CreateTodo(t, s, u.ID, c.ID, "exact", testutil.DeferredUntil(now))
	future := testutil.CreateTodo(t, s, u.ID, c.ID, "future", testutil.DeferredUntil(now.Add(24*time.Hour)))
	active := testutil.CreateTodo(t, s, u.ID, c.ID, "active")

	sweeper := tracks.NewDeferredTodos(s, zerolog.Nop())
	activated, err := sweeper.FindAndActivateReady(ctx, u.ID, now)
	require.NoError(t, err)
	require.Len(t, activated, 2)
	assert.Equal(t, past.ID, activated[0].ID)
	assert.Equal(t, exact.ID, activated[1].ID)

	for _, id := range []string{past.ID, exact.ID} {
		got, err := s.GetTodoByID(ctx, u.ID, id)
		require.NoError(t, err)
		assert.Equal(t, model.TodoStateActive, got.State)
		assert.Nil(t, got.ShowFrom)
	}

	got, err := s.GetTodoByID(ctx, u.ID, future.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TodoStateDeferred, got.State)
	require.NotNil(t, got.ShowFrom)

	got, err = s.GetTodoByID(ctx, u.ID, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.UpdatedAt.Unix(), got.UpdatedAt.Unix())

	again, err := sweeper.FindAndActivateReady(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestActivateAll(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	now := time.Now().UTC()
	for _, login := range []string{"alice", "bob"} {
		u := testutil.CreateUser(t, s, login)
		c := testutil.CreateContext(t, s, u.ID, "@home")
		testutil.CreateTodo(t, s, u.ID, c.ID, "ready", testutil.DeferredUntil(now.Add(-time.Minute)))
		testutil.CreateTodo(t, s, u.ID, c.ID, "not yet", testutil.DeferredUntil(now.Add(time.Hour)))
	}

	n, err := tracks.NewDeferredTodos(s, zerolog.Nop()).ActivateAll(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
