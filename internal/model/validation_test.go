package model_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/tracks/internal/model"
)

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	v := model.ValidationErrors{}
	assert.NoError(t, v.Err())

	v.Add("password_confirmation", "doesn't match Password")
	v.Add("login", model.MsgBlank)
	v.Add("login", "is too short (minimum is 3 characters)")

	assert.Equal(t, 3, v.Count())
	assert.Equal(t, []string{
		"Login can't be blank",
		"Login is too short (minimum is 3 characters)",
		"Password confirmation doesn't match Password",
	}, v.FullMessages())

	wrapped := fmt.Errorf("saving: %w", v.Err())
	var got model.ValidationErrors
	assert.True(t, errors.As(wrapped, &got))
	assert.Len(t, got.On("login"), 2)
}

func TestPreferenceValidate(t *testing.T) {
	t.Parallel()

	p := model.NewPreference("u1")
	assert.False(t, p.Validate().Any())
	assert.Equal(t, "UTC", p.Location().String())

	p.ReviewPeriod = 0
	p.TimeZone = "Mars/Olympus"
	v := p.Validate()
	assert.NotEmpty(t, v.On("review_period"))
	assert.NotEmpty(t, v.On("time_zone"))
}
