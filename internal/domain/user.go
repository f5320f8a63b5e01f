package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is a registered face. Records are append-only: once stored they are
// never mutated or deleted.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	FaceEncoding []float64 `json:"face_encoding"`
	ImagePath    string    `json:"image_path"`
	RegisteredAt time.Time `json:"registered_at"`
}

// naiveTimeLayouts are ISO-8601 forms without a zone offset, as written by
// Python's datetime.isoformat(). Fractional seconds are optional.
var naiveTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts registered_at as RFC 3339 or as a naive ISO-8601
// timestamp, read in local time. Missing or null leaves it zero. Marshalling
// always writes RFC 3339.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		RegisteredAt *string `json:"registered_at"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	u.RegisteredAt = time.Time{}
	if aux.RegisteredAt == nil || *aux.RegisteredAt == "" {
		return nil
	}

	t, err := ParseTimestamp(*aux.RegisteredAt)
	if err != nil {
		return err
	}
	u.RegisteredAt = t
	return nil
}

// ParseTimestamp parses RFC 3339 first, then the naive ISO-8601 layouts.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("registered_at: unrecognised timestamp %q", s)
}

// UserSummary is the public projection of a User. The descriptor stays inside the service.
type UserSummary struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		ImagePath: u.ImagePath,
	}
}

// Match is a stored user whose descriptor fell under the matching threshold
type Match struct {
	User     User
	Distance float64
}

// Verification is the outcome of a verification attempt.
// Recognized=false is a valid outcome, not an error.
type Verification struct {
	Recognized bool
	User       *User
	Distance   float64
}
