package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// FixturePassword is the plain-text password of users made by CreateUser.
const FixturePassword = "sesame"

// CreateUser stores a user whose password is FixturePassword.
func CreateUser(t *testing.T, s store.Store, login string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := &model.User{Login: login, CryptedPassword: string(hash), AuthType: model.DefaultAuthType}
	require.NoError(t, u.GenerateToken())
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// CreateProject stores a project at the end of the user's list.
func CreateProject(t *testing.T, s store.Store, userID, name, state string) *model.Project {
	t.Helper()

	p := &model.Project{UserID: userID, Name: name, State: state}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

// CreateContext stores an active context at the end of the user's list.
func CreateContext(t *testing.T, s store.Store, userID, name string) *model.Context {
	t.Helper()

	c := &model.Context{UserID: userID, Name: name}
	require.NoError(t, s.CreateContext(context.Background(), c))
	return c
}

// TodoOption adjusts a todo before CreateTodo stores it.
type TodoOption func(*model.Todo)

// InProject files the todo under a project.
func InProject(projectID string) TodoOption {
	return func(t *model.Todo) { t.ProjectID = &projectID }
}

// DeferredUntil makes the todo deferred until showFrom.
func DeferredUntil(showFrom time.Time) TodoOption {
	return func(t *model.Todo) {
		sf := showFrom.UTC()
		t.State = model.TodoStateDeferred
		t.ShowFrom = &sf
	}
}

// WithState sets the todo's state.
func WithState(state string) TodoOption {
	return func(t *model.Todo) { t.State = state }
}

// CreateTodo stores an active todo in contextID.
func CreateTodo(t *testing.T, s store.Store, userID, contextID, description string, opts ...TodoOption) *model.Todo {
	t.Helper()

	todo := &model.Todo{UserID: userID, ContextID: contextID, Description: description}
	for _, opt := range opts {
		opt(todo)
	}
	require.NoError(t, s.CreateTodo(context.Background(), todo))
	return todo
}

// CreateNote stores a note on projectID.
func CreateNote(t *testing.T, s store.Store, userID, projectID, body string) *model.Note {
	t.Helper()

	n := &model.Note{UserID: userID, ProjectID: projectID, Body: body}
	require.NoError(t, s.CreateNote(context.Background(), n))
	return n
}
