package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
	"github.com/nhle/tracks/tests/testutil"
)

func TestRecordOccurrence(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	rec := &model.RecurringTodo{
		UserID: u.ID, ContextID: c.ID, Description: "water plants",
		RecurringPeriod: model.PeriodDaily, StartFrom: start,
	}
	require.NoError(t, s.CreateRecurringTodo(ctx, rec))
	assert.Equal(t, model.RecurringStateActive, rec.State)
	assert.Equal(t, 1, rec.EveryCount)

	todo := rec.BuildTodo(start, start.Add(time.Hour))
	rec.OccurrencesCount = 1
	rec.LastOccurrence = &start
	require.NoError(t, s.RecordOccurrence(ctx, rec, &todo))

	got, err := s.GetRecurringTodoByID(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OccurrencesCount)
	require.NotNil(t, got.LastOccurrence)
	assert.True(t, start.Equal(*got.LastOccurrence))

	spawned, err := s.GetTodoByID(ctx, u.ID, todo.ID)
	require.NoError(t, err)
	require.NotNil(t, spawned.RecurringTodoID)
	assert.Equal(t, rec.ID, *spawned.RecurringTodoID)

	require.NoError(t, s.DeleteRecurringTodo(ctx, u.ID, rec.ID))
	spawned, err = s.GetTodoByID(ctx, u.ID, todo.ID)
	require.NoError(t, err)
	assert.Nil(t, spawned.RecurringTodoID)

	_, err = s.GetRecurringTodoByID(ctx, u.ID, rec.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetRecurringTodosByState(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	for _, d := range []string{"one", "two"} {
		require.NoError(t, s.CreateRecurringTodo(ctx, &model.RecurringTodo{
			UserID: u.ID, ContextID: c.ID, Description: d,
			RecurringPeriod: model.PeriodWeekly, StartFrom: start,
		}))
	}
	done := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateRecurringTodo(ctx, &model.RecurringTodo{
		UserID: u.ID, ContextID: c.ID, Description: "old",
		RecurringPeriod: model.PeriodYearly, StartFrom: start,
		State: model.RecurringStateCompleted, CompletedAt: &done,
	}))

	active, err := s.GetRecurringTodos(ctx, u.ID, model.RecurringStateActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := s.GetRecurringTodos(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "old", all[0].Description)
}
