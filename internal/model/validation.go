package model

import (
	"fmt"
	"sort"
	"strings"
)

// Validation messages, worded the way forms render them.
const (
	MsgBlank        = "can't be blank"
	MsgTaken        = "has already been taken"
	MsgConfirmation = "doesn't match %s"
)

// ValidationErrors maps a field name to the list of violations on that
// field. A non-empty value is returned as an error from create/update
// operations; callers recover it with errors.As.
type ValidationErrors map[string][]string

// Add records a violation for field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// On returns the violations recorded for field.
func (v ValidationErrors) On(field string) []string {
	return v[field]
}

// Any reports whether at least one violation was recorded.
func (v ValidationErrors) Any() bool {
	return len(v) > 0
}

// Count returns the total number of violations over all fields.
func (v ValidationErrors) Count() int {
	n := 0
	for _, msgs := range v {
		n += len(msgs)
	}
	return n
}

// Err returns v as an error, or nil when nothing was recorded.
func (v ValidationErrors) Err() error {
	if !v.Any() {
		return nil
	}
	return v
}

// FullMessages returns "Field message" strings sorted by field name.
func (v ValidationErrors) FullMessages() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		for _, msg := range v[f] {
			out = append(out, humanize(f)+" "+msg)
		}
	}
	return out
}

func (v ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v.FullMessages(), ", ")
}

// validateLength appends the presence and length violations for value.
func validateLength(v ValidationErrors, field, value string, min, max int, requirePresence bool) {
	n := len([]rune(value))
	if requirePresence && strings.TrimSpace(value) == "" {
		v.Add(field, MsgBlank)
	}
	switch {
	case n < min:
		v.Add(field, fmt.Sprintf("is too short (minimum is %d characters)", min))
	case max > 0 && n > max:
		v.Add(field, fmt.Sprintf("is too long (maximum is %d characters)", max))
	}
}

// humanize turns "password_confirmation" into "Password confirmation".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
