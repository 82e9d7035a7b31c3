package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tracks/internal/model"
)

func TestTodoTransitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	todo := model.Todo{ID: "t1", State: model.TodoStateActive}

	require.NoError(t, todo.Defer(now.Add(time.Hour)))
	assert.Equal(t, model.TodoStateDeferred, todo.State)
	assert.False(t, todo.ReadyAt(now))
	assert.True(t, todo.ReadyAt(now.Add(time.Hour)))

	require.NoError(t, todo.Activate())
	assert.Equal(t, model.TodoStateActive, todo.State)
	assert.Nil(t, todo.ShowFrom)

	err := todo.Activate()
	var bad *model.InvalidTransitionError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, "activate", bad.Event)

	require.NoError(t, todo.Block())
	assert.Equal(t, model.TodoStatePending, todo.State)
	require.NoError(t, todo.Activate())

	require.NoError(t, todo.Complete(now))
	assert.True(t, todo.IsCompleted())
	require.NotNil(t, todo.CompletedAt)
	assert.Error(t, todo.Complete(now))
	assert.Error(t, todo.Defer(now))
	assert.Error(t, todo.Block())

	require.NoError(t, todo.Reopen())
	assert.Nil(t, todo.CompletedAt)
	assert.Error(t, todo.Reopen())
}

func TestTodoValidate(t *testing.T) {
	t.Parallel()

	v := model.Todo{State: "nope"}.Validate()
	assert.Equal(t, []string{model.MsgBlank, "is too short (minimum is 1 characters)"}, v.On("description"))
	assert.Equal(t, []string{model.MsgBlank}, v.On("context"))
	assert.NotEmpty(t, v.On("state"))

	ok := model.Todo{Description: "call", ContextID: "c", State: model.TodoStateActive}
	assert.False(t, ok.Validate().Any())
}

func TestTodoUnblock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	todo := model.Todo{ID: "t1", State: model.TodoStateActive}
	require.NoError(t, todo.Defer(now.Add(time.Hour)))
	require.NoError(t, todo.Block())
	require.NotNil(t, todo.ShowFrom)

	require.NoError(t, todo.Unblock(now))
	assert.Equal(t, model.TodoStateDeferred, todo.State)
	assert.NotNil(t, todo.ShowFrom)

	require.NoError(t, todo.Block())
	require.NoError(t, todo.Unblock(now.Add(time.Hour)))
	assert.Equal(t, model.TodoStateActive, todo.State)
	assert.Nil(t, todo.ShowFrom)

	assert.Error(t, todo.Unblock(now))
}
