package tracks_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
	"github.com/nhle/tracks/internal/tracks"
	"github.com/nhle/tracks/tests/testutil"
)

func newUsers(t *testing.T) (*tracks.Users, store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t)
	cfg := model.DefaultAppConfig()
	cfg.Auth.Schemes = []string{"database", "open_id"}
	cfg.Pagination.PerPage = 2
	return tracks.NewUsers(s, cfg, zerolog.Nop()), s
}

func signup(t *testing.T, users *tracks.Users, login string) *model.User {
	t.Helper()
	u, err := users.Signup(context.Background(), tracks.SignupParams{
		Login: login, Password: "abracadabra", PasswordConfirmation: "abracadabra",
	})
	require.NoError(t, err)
	return u
}

func TestSignupFirstUserIsAdmin(t *testing.T) {
	t.Parallel()

	users, s := newUsers(t)
	ctx := context.Background()

	empty, err := users.NoUsersYet(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	first := signup(t, users, "admin")
	second := signup(t, users, "jane")

	assert.True(t, first.IsAdmin)
	assert.False(t, second.IsAdmin)
	assert.Equal(t, "database", second.AuthType)
	assert.Len(t, second.Token, 40)
	assert.Empty(t, second.Password)

	admin, err := users.FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, admin.ID)

	_, err = s.GetPreference(ctx, second.ID)
	assert.NoError(t, err)
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	users, _ := newUsers(t)
	ctx := context.Background()
	signup(t, users, "jane")

	tests := []struct {
		name  string
		p     tracks.SignupParams
		field string
		msg   string
	}{
		{
			name:  "short login",
			p:     tracks.SignupParams{Login: "jo", Password: "secret", PasswordConfirmation: "secret"},
			field: "login", msg: "is too short (minimum is 3 characters)",
		},
		{
			name:  "taken login",
			p:     tracks.SignupParams{Login: "jane", Password: "secret", PasswordConfirmation: "secret"},
			field: "login", msg: model.MsgTaken,
		},
		{
			name:  "mismatched confirmation",
			p:     tracks.SignupParams{Login: "john", Password: "secret", PasswordConfirmation: "secrets"},
			field: "password_confirmation", msg: "doesn't match Password",
		},
		{
			name:  "unknown auth type",
			p:     tracks.SignupParams{Login: "john", Password: "secret", PasswordConfirmation: "secret", AuthType: "ldap"},
			field: "auth_type", msg: "not a valid authentication type (ldap)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Signup(ctx, tt.p)
			var v model.ValidationErrors
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v.On(tt.field), tt.msg)
		})
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	users, s := newUsers(t)
	ctx := context.Background()
	u := signup(t, users, "jane")

	tests := []struct {
		name     string
		password string
		confirm  string
		field    string
	}{
		{name: "mismatch", password: "newpass", confirm: "newpasz", field: "password_confirmation"},
		{name: "too short", password: "four", confirm: "four", field: "password"},
		{name: "too long", password: strings.Repeat("x", 41), confirm: strings.Repeat("x", 41), field: "password"},
		{name: "blank confirmation", password: "newpass", confirm: "", field: "password_confirmation"},
		{name: "blank", password: "", confirm: "", field: "password"},
	}
	for _, tt := range tests {
		err := users.ChangePassword(ctx, "jane", tt.password, tt.confirm)
		var v model.ValidationErrors
		require.ErrorAs(t, err, &v, tt.name)
		assert.NotEmpty(t, v.On(tt.field), tt.name)
	}

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.CryptedPassword, stored.CryptedPassword)
	assert.True(t, stored.PasswordMatches("abracadabra"))
	assert.False(t, stored.PasswordMatches(""))

	require.NoError(t, users.ChangePassword(ctx, "jane", "fresh-start", "fresh-start"))

	stored, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, u.CryptedPassword, stored.CryptedPassword)
	assert.False(t, stored.PasswordMatches("abracadabra"))
	assert.True(t, stored.PasswordMatches("fresh-start"))

	// Boundary lengths are accepted.
	require.NoError(t, users.ChangePassword(ctx, "jane", "fives", "fives"))
	forty := strings.Repeat("y", 40)
	require.NoError(t, users.ChangePassword(ctx, "jane", forty, forty))
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	users, _ := newUsers(t)
	ctx := context.Background()
	signup(t, users, "jane")

	u, err := users.Authenticate(ctx, "jane", "abracadabra")
	require.NoError(t, err)
	assert.Equal(t, "jane", u.Login)

	_, err = users.Authenticate(ctx, "jane", "wrong")
	assert.ErrorIs(t, err, tracks.ErrAuthenticationFailed)

	_, err = users.Authenticate(ctx, "nobody", "abracadabra")
	assert.ErrorIs(t, err, tracks.ErrAuthenticationFailed)

	require.NoError(t, users.UpdateAuthType(ctx, "jane", "open_id"))
	_, err = users.Authenticate(ctx, "jane", "abracadabra")
	assert.ErrorIs(t, err, tracks.ErrAuthenticationFailed)

	var v model.ValidationErrors
	require.ErrorAs(t, users.UpdateAuthType(ctx, "jane", "cas"), &v)
	assert.Equal(t, []string{"not a valid authentication type (cas)"}, v.On("auth_type"))
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	users, s := newUsers(t)
	ctx := context.Background()
	u := signup(t, users, "jane")

	token, err := users.RefreshToken(ctx, "jane")
	require.NoError(t, err)
	assert.NotEqual(t, u.Token, token)

	byToken, err := s.GetUserByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byToken.ID)

	_, err = s.GetUserByToken(ctx, u.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRememberMe(t *testing.T) {
	t.Parallel()

	users, s := newUsers(t)
	ctx := context.Background()
	u := signup(t, users, "jane")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	remembered, err := users.RememberMe(ctx, "jane", now)
	require.NoError(t, err)
	require.NotNil(t, remembered.RememberToken)

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.RememberTokenValid(now.Add(13*24*time.Hour)))
	assert.False(t, stored.RememberTokenValid(now.Add(15*24*time.Hour)))

	require.NoError(t, users.ForgetMe(ctx, "jane"))
	stored, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RememberToken)
	assert.False(t, stored.RememberTokenValid(now))
}

func TestListAndDestroy(t *testing.T) {
	t.Parallel()

	users, s := newUsers(t)
	ctx := context.Background()
	for _, login := range []string{"carol", "alice", "bob"} {
		signup(t, users, login)
	}

	page1, err := users.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "alice", page1[0].Login)

	page2, err := users.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "carol", page2[0].Login)

	require.NoError(t, users.Destroy(ctx, "bob"))
	_, err = users.Get(ctx, "bob")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, users.Destroy(ctx, "bob"), store.ErrNotFound)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Users)
	assert.Equal(t, 2, counts.Preferences)
}

func TestAuthSchemesPreferredFirst(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	cfg := model.DefaultAppConfig()
	cfg.Auth.Schemes = []string{"database", "open_id", "cas"}
	cfg.Auth.Preferred = "cas"

	users := tracks.NewUsers(s, cfg, zerolog.Nop())
	assert.Equal(t, []string{"cas", "database", "open_id"}, users.AuthSchemes())
}
