package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/tracks/internal/model"
)

const userColumns = `id, login, crypted_password, token, is_admin, auth_type,
	first_name, last_name, remember_token, remember_token_expires_at,
	created_at, updated_at`

// CreateUser inserts a user whose password has already been hashed, along
// with the user's default preference row. The user's ID and timestamps
// are filled in on success. A taken login is reported as
// model.ValidationErrors.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.AuthType == "" {
		user.AuthType = model.DefaultAuthType
	}
	ts := now()
	user.CreatedAt = ts
	user.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkLoginFree(ctx, tx, user.Login, user.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Login, user.CryptedPassword, user.Token,
			boolToInt(user.IsAdmin), user.AuthType,
			user.FirstName, user.LastName,
			user.RememberToken, utcPtr(user.RememberTokenExpiresAt),
			user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating user %s: %w", user.Login, err)
		}

		pref := model.NewPreference(user.ID)
		if err := insertPreference(ctx, tx, &pref); err != nil {
			return fmt.Errorf("creating preference for user %s: %w", user.Login, err)
		}
		return nil
	})
}

// UpdateUser writes every stored user column.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = now()

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkLoginFree(ctx, tx, user.Login, user.ID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users SET
				login = ?, crypted_password = ?, token = ?, is_admin = ?,
				auth_type = ?, first_name = ?, last_name = ?,
				remember_token = ?, remember_token_expires_at = ?, updated_at = ?
			WHERE id = ?`,
			user.Login, user.CryptedPassword, user.Token, boolToInt(user.IsAdmin),
			user.AuthType, user.FirstName, user.LastName,
			user.RememberToken, utcPtr(user.RememberTokenExpiresAt), user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("updating user %s: %w", user.ID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("user", user.ID)
		}
		return nil
	})
}

// checkLoginFree reports a taken login as a validation error.
func checkLoginFree(ctx context.Context, q sqlx.QueryerContext, login, exceptID string) error {
	var taken int
	err := sqlx.GetContext(ctx, q, &taken,
		"SELECT COUNT(*) FROM users WHERE login = ? AND id != ?", login, exceptID)
	if err != nil {
		return fmt.Errorf("checking login %s: %w", login, err)
	}
	if taken > 0 {
		v := model.ValidationErrors{}
		v.Add("login", model.MsgTaken)
		return v
	}
	return nil
}

// GetUserByID retrieves a single user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByLogin retrieves a single user by login.
func (s *SQLiteStore) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return s.getUser(ctx, "login", login)
}

// GetUserByToken retrieves the user owning a feed/API token.
func (s *SQLiteStore) GetUserByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, notFound("user with token", "''")
	}
	return s.getUser(ctx, "token", token)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", value)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", value, err)
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by login. Pages start at 1;
// perPage <= 0 returns every user.
func (s *SQLiteStore) ListUsers(ctx context.Context, page, perPage int) ([]model.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY login ASC"
	if perPage > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", perPage, (page-1)*perPage)
	}

	var users []model.User
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// FindAdmin returns the first admin user by creation time.
func (s *SQLiteStore) FindAdmin(ctx context.Context) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE is_admin = 1 ORDER BY created_at, login LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", "admin")
	}
	if err != nil {
		return nil, fmt.Errorf("finding admin: %w", err)
	}
	return &user, nil
}

// DestroyUser deletes a user and everything the user owns in one
// transaction. Rows are removed child-first: dependencies touching the
// user's todos, then todos and notes, then projects, contexts and
// recurring todos, then the preference, then the user.
func (s *SQLiteStore) DestroyUser(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM users WHERE id = ?", id); err != nil {
			return fmt.Errorf("looking up user %s: %w", id, err)
		}
		if exists == 0 {
			return notFound("user", id)
		}

		steps := []struct {
			what  string
			query string
		}{
			{"dependencies", `
				DELETE FROM dependencies
				WHERE predecessor_id IN (SELECT id FROM todos WHERE user_id = ?1)
				   OR successor_id IN (SELECT id FROM todos WHERE user_id = ?1)`},
			{"todos", "DELETE FROM todos WHERE user_id = ?1"},
			{"notes", "DELETE FROM notes WHERE user_id = ?1"},
			{"recurring todos", "DELETE FROM recurring_todos WHERE user_id = ?1"},
			{"projects", "DELETE FROM projects WHERE user_id = ?1"},
			{"contexts", "DELETE FROM contexts WHERE user_id = ?1"},
			{"preference", "DELETE FROM preferences WHERE user_id = ?1"},
			{"user", "DELETE FROM users WHERE id = ?1"},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
				return fmt.Errorf("deleting %s of user %s: %w", step.what, id, err)
			}
		}
		return nil
	})
}
