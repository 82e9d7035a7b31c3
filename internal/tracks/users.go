package tracks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// ErrAuthenticationFailed is returned for an unknown login, a wrong
// password, or a user whose auth type is not checked locally.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Users manages accounts.
type Users struct {
	store store.Store
	cfg   *model.AppConfig
	log   zerolog.Logger
}

// NewUsers returns a Users service validating auth types against cfg.
func NewUsers(s store.Store, cfg *model.AppConfig, logger zerolog.Logger) *Users {
	return &Users{store: s, cfg: cfg, log: logger.With().Str("service", "users").Logger()}
}

// SignupParams carries a signup form.
type SignupParams struct {
	Login                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
	AuthType             string
	IsAdmin              bool
}

// Signup creates a user with a hashed password, a fresh token and default
// preferences. The first user created is always an admin.
func (u *Users) Signup(ctx context.Context, p SignupParams) (*model.User, error) {
	user := &model.User{
		Login:                p.Login,
		Password:             p.Password,
		PasswordConfirmation: p.PasswordConfirmation,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		AuthType:             p.AuthType,
		IsAdmin:              p.IsAdmin,
	}
	if user.AuthType == "" {
		user.AuthType = u.cfg.PreferredAuth()
	}
	if err := user.Validate(u.cfg.Auth.Schemes).Err(); err != nil {
		return nil, err
	}

	first, err := u.NoUsersYet(ctx)
	if err != nil {
		return nil, err
	}
	if first {
		user.IsAdmin = true
	}

	if err := user.SetPassword(); err != nil {
		return nil, err
	}
	if err := user.GenerateToken(); err != nil {
		return nil, err
	}
	if err := u.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	u.log.Info().Str("login", user.Login).Bool("admin", user.IsAdmin).Msg("user signed up")
	return user, nil
}

// Get looks a user up by login.
func (u *Users) Get(ctx context.Context, login string) (*model.User, error) {
	return u.store.GetUserByLogin(ctx, login)
}

// List returns one page of users ordered by login, sized by the
// pagination.per_page setting. Pages start at 1.
func (u *Users) List(ctx context.Context, page int) ([]model.User, error) {
	return u.store.ListUsers(ctx, page, u.cfg.Pagination.PerPage)
}

// ChangePassword replaces a user's password. A confirmation mismatch or a
// length outside the allowed range fails with model.ValidationErrors and
// leaves the stored hash untouched.
func (u *Users) ChangePassword(ctx context.Context, login, password, confirmation string) error {
	user, err := u.store.GetUserByLogin(ctx, login)
	if err != nil {
		return err
	}
	user.Password = password
	user.PasswordConfirmation = confirmation
	v := user.Validate(u.cfg.Auth.Schemes)
	for field, msgs := range user.ValidatePassword() {
		if len(v.On(field)) == 0 {
			v[field] = msgs
		}
	}
	if err := v.Err(); err != nil {
		return err
	}
	if err := user.SetPassword(); err != nil {
		return err
	}
	if err := u.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("changing password for %s: %w", login, err)
	}

	u.log.Info().Str("login", login).Msg("password changed")
	return nil
}

// UpdateAuthType switches the scheme a user authenticates with. The scheme
// must be one of auth.schemes.
func (u *Users) UpdateAuthType(ctx context.Context, login, authType string) error {
	user, err := u.store.GetUserByLogin(ctx, login)
	if err != nil {
		return err
	}
	user.AuthType = authType
	if err := user.Validate(u.cfg.Auth.Schemes).Err(); err != nil {
		return err
	}
	return u.store.UpdateUser(ctx, user)
}

// RefreshToken issues a new feed/API token and returns it.
func (u *Users) RefreshToken(ctx context.Context, login string) (string, error) {
	user, err := u.store.GetUserByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if err := user.GenerateToken(); err != nil {
		return "", err
	}
	if err := u.store.UpdateUser(ctx, user); err != nil {
		return "", fmt.Errorf("refreshing token for %s: %w", login, err)
	}
	return user.Token, nil
}

// Authenticate checks a login and password for a database-backed user.
func (u *Users) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := u.store.GetUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		u.log.Warn().Str("login", login).Msg("authentication failed: unknown login")
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}
	if user.AuthType != model.DefaultAuthType || !user.PasswordMatches(password) {
		u.log.Warn().Str("login", login).Str("auth_type", user.AuthType).Msg("authentication failed")
		return nil, ErrAuthenticationFailed
	}
	return user, nil
}

// RememberMe stores a remember-me token valid for model.RememberFor.
func (u *Users) RememberMe(ctx context.Context, login string, now time.Time) (*model.User, error) {
	user, err := u.store.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if err := user.RememberMe(now); err != nil {
		return nil, err
	}
	if err := u.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("remembering %s: %w", login, err)
	}
	return user, nil
}

// ForgetMe drops a user's remember-me token.
func (u *Users) ForgetMe(ctx context.Context, login string) error {
	user, err := u.store.GetUserByLogin(ctx, login)
	if err != nil {
		return err
	}
	user.ForgetMe()
	return u.store.UpdateUser(ctx, user)
}

// Destroy deletes a user and everything the user owns.
func (u *Users) Destroy(ctx context.Context, login string) error {
	user, err := u.store.GetUserByLogin(ctx, login)
	if err != nil {
		return err
	}
	if err := u.store.DestroyUser(ctx, user.ID); err != nil {
		return fmt.Errorf("destroying user %s: %w", login, err)
	}
	u.log.Info().Str("login", login).Str("user_id", user.ID).Msg("user destroyed")
	return nil
}

// FindAdmin returns the first admin.
func (u *Users) FindAdmin(ctx context.Context) (*model.User, error) {
	return u.store.FindAdmin(ctx)
}

// NoUsersYet reports whether the database has no users.
func (u *Users) NoUsersYet(ctx context.Context) (bool, error) {
	n, err := u.store.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// AuthSchemes returns the configured schemes with the preferred one first.
func (u *Users) AuthSchemes() []string {
	preferred := u.cfg.PreferredAuth()
	schemes := []string{preferred}
	for _, s := range u.cfg.Auth.Schemes {
		if !slices.Contains(schemes, s) {
			schemes = append(schemes, s)
		}
	}
	return schemes
}
