package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
	"github.com/nhle/tracks/tests/testutil"
)

func TestCreateUserCreatesPreference(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, s, "alice")
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	pref, err := s.GetPreference(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultReviewPeriod, pref.ReviewPeriod)
	assert.Equal(t, model.DefaultShowNumberCompleted, pref.ShowNumberCompleted)
	assert.Equal(t, "UTC", pref.TimeZone)
}

func TestCreateUserDuplicateLogin(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	testutil.CreateUser(t, s, "alice")

	err := s.CreateUser(context.Background(), &model.User{Login: "alice", CryptedPassword: "x"})
	var v model.ValidationErrors
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{model.MsgTaken}, v.On("login"))
}

func TestUpdateUserDuplicateLogin(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	testutil.CreateUser(t, s, "alice")
	bob := testutil.CreateUser(t, s, "bob")

	bob.Login = "alice"
	err := s.UpdateUser(context.Background(), bob)
	var v model.ValidationErrors
	require.ErrorAs(t, err, &v)
	assert.NotEmpty(t, v.On("login"))
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetUserByLogin(ctx, "nobody")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.EqualError(t, err, "user nobody not found")

	_, err = s.GetUserByToken(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetUserByToken(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "alice")

	got, err := s.GetUserByToken(context.Background(), u.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestListUsersPaginates(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	for _, login := range []string{"erin", "carol", "alice", "dave", "bob"} {
		testutil.CreateUser(t, s, login)
	}

	page1, err := s.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	page3, err := s.ListUsers(ctx, 3, 2)
	require.NoError(t, err)
	all, err := s.ListUsers(ctx, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, logins(page1))
	assert.Equal(t, []string{"erin"}, logins(page3))
	assert.Len(t, all, 5)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestFindAdmin(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.FindAdmin(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	testutil.CreateUser(t, s, "alice")
	bob := testutil.CreateUser(t, s, "bob")
	bob.IsAdmin = true
	require.NoError(t, s.UpdateUser(ctx, bob))

	admin, err := s.FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", admin.Login)
}

func TestDestroyUserCascades(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()

	keep := testutil.CreateUser(t, s, "keeper")
	keepCtx := testutil.CreateContext(t, s, keep.ID, "@home")
	keepProject := testutil.CreateProject(t, s, keep.ID, "Garden", model.ProjectStateActive)
	keepA := testutil.CreateTodo(t, s, keep.ID, keepCtx.ID, "dig", testutil.InProject(keepProject.ID))
	keepB := testutil.CreateTodo(t, s, keep.ID, keepCtx.ID, "plant")
	require.NoError(t, s.AddDependency(ctx, keep.ID, &model.Dependency{PredecessorID: keepA.ID, SuccessorID: keepB.ID}))
	testutil.CreateNote(t, s, keep.ID, keepProject.ID, "seeds")

	before, err := s.Counts(ctx)
	require.NoError(t, err)

	gone := testutil.CreateUser(t, s, "leaver")
	c := testutil.CreateContext(t, s, gone.ID, "@work")
	p := testutil.CreateProject(t, s, gone.ID, "Report", model.ProjectStateActive)
	a := testutil.CreateTodo(t, s, gone.ID, c.ID, "draft", testutil.InProject(p.ID))
	b := testutil.CreateTodo(t, s, gone.ID, c.ID, "send", testutil.InProject(p.ID))
	require.NoError(t, s.AddDependency(ctx, gone.ID, &model.Dependency{PredecessorID: a.ID, SuccessorID: b.ID}))
	testutil.CreateNote(t, s, gone.ID, p.ID, "outline")
	rec := &model.RecurringTodo{
		UserID: gone.ID, ContextID: c.ID, Description: "weekly report",
		RecurringPeriod: model.PeriodWeekly, StartFrom: a.CreatedAt,
	}
	require.NoError(t, s.CreateRecurringTodo(ctx, rec))

	require.NoError(t, s.DestroyUser(ctx, gone.ID))

	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = s.GetUserByID(ctx, gone.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DestroyUser(ctx, gone.ID), store.ErrNotFound)
}

func TestSchemaVersion(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func logins(users []model.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Login
	}
	return out
}
