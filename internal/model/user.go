package model

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Field limits for users.
const (
	LoginMinLength    = 3
	LoginMaxLength    = 80
	PasswordMinLength = 5
	PasswordMaxLength = 40
)

// RememberFor is how long a remember-me token stays valid.
const RememberFor = 14 * 24 * time.Hour

// DefaultAuthType is the scheme assigned when none is given.
const DefaultAuthType = "database"

// User owns every other record in the system.
type User struct {
	XMLName xml.Name `json:"-" db:"-" xml:"user"`

	ID                     string     `json:"id" db:"id" xml:"id"`
	Login                  string     `json:"login" db:"login" xml:"login"`
	CryptedPassword        string     `json:"-" db:"crypted_password" xml:"-"`
	Token                  string     `json:"token" db:"token" xml:"token"`
	IsAdmin                bool       `json:"is_admin" db:"is_admin" xml:"is-admin"`
	AuthType               string     `json:"auth_type" db:"auth_type" xml:"auth-type"`
	FirstName              string     `json:"first_name" db:"first_name" xml:"first-name"`
	LastName               string     `json:"last_name" db:"last_name" xml:"last-name"`
	RememberToken          *string    `json:"-" db:"remember_token" xml:"-"`
	RememberTokenExpiresAt *time.Time `json:"-" db:"remember_token_expires_at" xml:"-"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at" xml:"created-at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at" xml:"updated-at"`

	// Password and PasswordConfirmation carry plain text between a form
	// and SetPassword. They are never stored.
	Password             string `json:"-" db:"-" xml:"-"`
	PasswordConfirmation string `json:"-" db:"-" xml:"-"`
}

// UsersXML is the document form of a user listing.
type UsersXML struct {
	XMLName xml.Name `xml:"users"`
	Type    string   `xml:"type,attr"`
	Users   []User   `xml:"user"`
}

// NewUsersXML wraps users for XML rendering.
func NewUsersXML(users []User) UsersXML {
	return UsersXML{Type: "array", Users: users}
}

// DisplayName prefers the real name and falls back to the login.
func (u User) DisplayName() string {
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	switch {
	case first == "" && last == "":
		return u.Login
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// Param is the value users are addressed by in URLs and CLI arguments.
func (u User) Param() string { return u.Login }

// IsNew reports whether the user has not been stored yet.
func (u User) IsNew() bool { return u.ID == "" }

func (u User) passwordRequired() bool {
	return u.IsNew() || u.Password != "" || u.PasswordConfirmation != ""
}

// Validate checks field constraints. Login uniqueness needs the database
// and is checked by the store.
func (u User) Validate(authSchemes []string) ValidationErrors {
	v := ValidationErrors{}

	validateLength(v, "login", u.Login, LoginMinLength, LoginMaxLength, true)

	if u.passwordRequired() {
		u.validatePassword(v)
	}

	if len(authSchemes) > 0 && !slices.Contains(authSchemes, u.AuthType) {
		v.Add("auth_type", fmt.Sprintf("not a valid authentication type (%s)", u.AuthType))
	}

	return v
}

// ValidatePassword checks the pending password and its confirmation
// regardless of whether the user is stored.
func (u User) ValidatePassword() ValidationErrors {
	v := ValidationErrors{}
	u.validatePassword(v)
	return v
}

func (u User) validatePassword(v ValidationErrors) {
	validateLength(v, "password", u.Password, PasswordMinLength, PasswordMaxLength, true)
	if u.PasswordConfirmation == "" {
		v.Add("password_confirmation", MsgBlank)
	} else if u.Password != u.PasswordConfirmation {
		v.Add("password_confirmation", fmt.Sprintf(MsgConfirmation, "Password"))
	}
}

// SetPassword hashes the pending plain-text password into CryptedPassword
// and clears the plain-text fields.
func (u *User) SetPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.CryptedPassword = string(hash)
	u.Password = ""
	u.PasswordConfirmation = ""
	return nil
}

// PasswordMatches compares plain against the stored hash.
func (u User) PasswordMatches(plain string) bool {
	if u.CryptedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.CryptedPassword), []byte(plain)) == nil
}

// GenerateToken replaces the feed/API token with a fresh random value.
func (u *User) GenerateToken() error {
	token, err := NewToken()
	if err != nil {
		return err
	}
	u.Token = token
	return nil
}

// RememberMe issues a remember-me token that expires after RememberFor.
func (u *User) RememberMe(now time.Time) error {
	token, err := NewToken()
	if err != nil {
		return err
	}
	expires := now.Add(RememberFor).UTC()
	u.RememberToken = &token
	u.RememberTokenExpiresAt = &expires
	return nil
}

// ForgetMe drops the remember-me token.
func (u *User) ForgetMe() {
	u.RememberToken = nil
	u.RememberTokenExpiresAt = nil
}

// RememberTokenValid reports whether a remember-me token exists and has
// not expired at now.
func (u User) RememberTokenValid(now time.Time) bool {
	return u.RememberToken != nil && u.RememberTokenExpiresAt != nil &&
		now.Before(*u.RememberTokenExpiresAt)
}

// NewToken returns 40 hex characters of randomness.
func NewToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
