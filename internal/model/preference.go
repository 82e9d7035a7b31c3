package model

import "time"

// Preference defaults.
const (
	DefaultReviewPeriod        = 14
	DefaultShowNumberCompleted = 5
	DefaultStalenessStarts     = 7
	DefaultDateFormat          = "%d/%m/%Y"
	DefaultTimeZone            = "UTC"
)

// Preference holds per-user settings. Each user has exactly one.
type Preference struct {
	ID                  string    `json:"id" db:"id"`
	UserID              string    `json:"user_id" db:"user_id"`
	TimeZone            string    `json:"time_zone" db:"time_zone"`
	DateFormat          string    `json:"date_format" db:"date_format"`
	ReviewPeriod        int       `json:"review_period" db:"review_period"`
	ShowNumberCompleted int       `json:"show_number_completed" db:"show_number_completed"`
	StalenessStarts     int       `json:"staleness_starts" db:"staleness_starts"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// NewPreference returns the defaults a new user starts with.
func NewPreference(userID string) Preference {
	return Preference{
		UserID:              userID,
		TimeZone:            DefaultTimeZone,
		DateFormat:          DefaultDateFormat,
		ReviewPeriod:        DefaultReviewPeriod,
		ShowNumberCompleted: DefaultShowNumberCompleted,
		StalenessStarts:     DefaultStalenessStarts,
	}
}

// Validate checks the numeric settings.
func (p Preference) Validate() ValidationErrors {
	v := ValidationErrors{}
	if p.ReviewPeriod < 1 {
		v.Add("review_period", "must be greater than 0")
	}
	if p.ShowNumberCompleted < 0 {
		v.Add("show_number_completed", "must be greater than or equal to 0")
	}
	if p.StalenessStarts < 0 {
		v.Add("staleness_starts", "must be greater than or equal to 0")
	}
	if _, err := time.LoadLocation(p.TimeZone); err != nil {
		v.Add("time_zone", "is not a known time zone")
	}
	return v
}

// Location resolves TimeZone, falling back to UTC.
func (p Preference) Location() *time.Location {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
