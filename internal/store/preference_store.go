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

const preferenceColumns = `id, user_id, time_zone, date_format, review_period,
	show_number_completed, staleness_starts, created_at, updated_at`

func insertPreference(ctx context.Context, ex sqlx.ExecerContext, pref *model.Preference) error {
	if pref.ID == "" {
		pref.ID = uuid.New().String()
	}
	ts := now()
	pref.CreatedAt = ts
	pref.UpdatedAt = ts

	_, err := ex.ExecContext(ctx, `
		INSERT INTO preferences (`+preferenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pref.ID, pref.UserID, pref.TimeZone, pref.DateFormat, pref.ReviewPeriod,
		pref.ShowNumberCompleted, pref.StalenessStarts, pref.CreatedAt, pref.UpdatedAt,
	)
	return err
}

// GetPreference returns the preference row of a user.
func (s *SQLiteStore) GetPreference(ctx context.Context, userID string) (*model.Preference, error) {
	var pref model.Preference
	err := s.db.GetContext(ctx, &pref,
		"SELECT "+preferenceColumns+" FROM preferences WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("preference for user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting preference for user %s: %w", userID, err)
	}
	return &pref, nil
}

// UpdatePreference writes a user's settings.
func (s *SQLiteStore) UpdatePreference(ctx context.Context, pref *model.Preference) error {
	if err := pref.Validate().Err(); err != nil {
		return err
	}
	pref.UpdatedAt = now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE preferences SET
			time_zone = ?, date_format = ?, review_period = ?,
			show_number_completed = ?, staleness_starts = ?, updated_at = ?
		WHERE user_id = ?`,
		pref.TimeZone, pref.DateFormat, pref.ReviewPeriod,
		pref.ShowNumberCompleted, pref.StalenessStarts, pref.UpdatedAt,
		pref.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating preference for user %s: %w", pref.UserID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("preference for user", pref.UserID)
	}
	return nil
}
