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

func TestCreateTodoRejectsForeignContext(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s, "alice")
	bob := testutil.CreateUser(t, s, "bob")
	bobsCtx := testutil.CreateContext(t, s, bob.ID, "@bob")
	bobsProject := testutil.CreateProject(t, s, bob.ID, "Bob's", model.ProjectStateActive)
	alicesCtx := testutil.CreateContext(t, s, alice.ID, "@alice")

	var v model.ValidationErrors

	err := s.CreateTodo(ctx, &model.Todo{UserID: alice.ID, ContextID: bobsCtx.ID, Description: "x"})
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"is invalid"}, v.On("context"))

	err = s.CreateTodo(ctx, &model.Todo{
		UserID: alice.ID, ContextID: alicesCtx.ID, ProjectID: &bobsProject.ID, Description: "x",
	})
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"is invalid"}, v.On("project"))
}

func TestCreateTodoValidation(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")

	long := make([]byte, model.TodoDescriptionMaxLength+1)
	for i := range long {
		long[i] = 'x'
	}
	err := s.CreateTodo(context.Background(), &model.Todo{UserID: u.ID, ContextID: c.ID, Description: string(long)})
	var v model.ValidationErrors
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"is too long (maximum is 100 characters)"}, v.On("description"))

	err = s.CreateTodo(context.Background(), &model.Todo{
		UserID: u.ID, ContextID: c.ID, Description: "later", State: model.TodoStateDeferred,
	})
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{model.MsgBlank}, v.On("show_from"))
}

func TestGetDeferredTodosOrder(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	now := time.Now().UTC()

	late := testutil.CreateTodo(t, s, u.ID, c.ID, "late", testutil.DeferredUntil(now.Add(48*time.Hour)))
	early := testutil.CreateTodo(t, s, u.ID, c.ID, "early", testutil.DeferredUntil(now.Add(-48*time.Hour)))
	tieOld := testutil.CreateTodo(t, s, u.ID, c.ID, "tie old", testutil.DeferredUntil(now.Add(-time.Hour)))
	tieNew := testutil.CreateTodo(t, s, u.ID, c.ID, "tie new", testutil.DeferredUntil(now.Add(-time.Hour)))
	testutil.CreateTodo(t, s, u.ID, c.ID, "active")

	all, err := s.GetDeferredTodos(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID, tieNew.ID, tieOld.ID, late.ID}, todoIDs(all))

	ready, err := s.GetDeferredTodos(ctx, u.ID, &now)
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID, tieNew.ID, tieOld.ID}, todoIDs(ready))
}

func TestGetTodosFilter(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	p := testutil.CreateProject(t, s, u.ID, "Garden", model.ProjectStateActive)

	inProject := testutil.CreateTodo(t, s, u.ID, c.ID, "dig", testutil.InProject(p.ID))
	loose := testutil.CreateTodo(t, s, u.ID, c.ID, "call mum")
	done := testutil.CreateTodo(t, s, u.ID, c.ID, "done", testutil.WithState(model.TodoStateCompleted))

	noProject := ""
	got, err := s.GetTodos(ctx, store.TodoFilter{UserID: u.ID, ProjectID: &noProject})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{loose.ID, done.ID}, todoIDs(got))

	got, err = s.GetTodos(ctx, store.TodoFilter{UserID: u.ID, ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{inProject.ID}, todoIDs(got))

	completed := model.TodoStateCompleted
	got, err = s.GetTodos(ctx, store.TodoFilter{UserID: u.ID, State: &completed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].CompletedAt)
}

func TestCountTodosByGroup(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	home := testutil.CreateContext(t, s, u.ID, "@home")
	work := testutil.CreateContext(t, s, u.ID, "@work")
	p := testutil.CreateProject(t, s, u.ID, "Garden", model.ProjectStateActive)

	testutil.CreateTodo(t, s, u.ID, home.ID, "a", testutil.InProject(p.ID))
	testutil.CreateTodo(t, s, u.ID, home.ID, "b", testutil.InProject(p.ID))
	testutil.CreateTodo(t, s, u.ID, work.ID, "c")

	byProject, err := s.CountTodosByGroup(ctx, u.ID, "project_id")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{p.ID: 2, "": 1}, byProject)

	byContext, err := s.CountTodosByGroup(ctx, u.ID, "context_id")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{home.ID: 2, work.ID: 1}, byContext)

	_, err = s.CountTodosByGroup(ctx, u.ID, "description; DROP TABLE todos")
	assert.Error(t, err)
}

func TestDeleteTodoRemovesDependencies(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	a := testutil.CreateTodo(t, s, u.ID, c.ID, "a")
	b := testutil.CreateTodo(t, s, u.ID, c.ID, "b")
	require.NoError(t, s.AddDependency(ctx, u.ID, &model.Dependency{PredecessorID: a.ID, SuccessorID: b.ID}))

	require.NoError(t, s.DeleteTodo(ctx, u.ID, a.ID))

	preds, err := s.GetPredecessors(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, preds)
	assert.ErrorIs(t, s.DeleteTodo(ctx, u.ID, a.ID), store.ErrNotFound)
}

func TestDependencyEdges(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, s, "alice")
	other := testutil.CreateUser(t, s, "bob")
	c := testutil.CreateContext(t, s, u.ID, "@home")
	oc := testutil.CreateContext(t, s, other.ID, "@bob")
	a := testutil.CreateTodo(t, s, u.ID, c.ID, "a")
	b := testutil.CreateTodo(t, s, u.ID, c.ID, "b")
	foreign := testutil.CreateTodo(t, s, other.ID, oc.ID, "foreign")

	require.NoError(t, s.AddDependency(ctx, u.ID, &model.Dependency{PredecessorID: a.ID, SuccessorID: b.ID}))

	var v model.ValidationErrors
	err := s.AddDependency(ctx, u.ID, &model.Dependency{PredecessorID: a.ID, SuccessorID: b.ID})
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{model.MsgTaken}, v.On("predecessor"))

	err = s.AddDependency(ctx, u.ID, &model.Dependency{PredecessorID: a.ID, SuccessorID: a.ID})
	require.ErrorAs(t, err, &v)

	err = s.AddDependency(ctx, u.ID, &model.Dependency{PredecessorID: foreign.ID, SuccessorID: b.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)

	succ, err := s.GetSuccessors(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, todoIDs(succ))

	open, err := s.CountOpenPredecessors(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	require.NoError(t, s.RemoveDependency(ctx, a.ID, b.ID))
	assert.ErrorIs(t, s.RemoveDependency(ctx, a.ID, b.ID), store.ErrNotFound)
}

func todoIDs(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}
