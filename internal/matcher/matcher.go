// Package matcher identifies a face descriptor against the registered users.
//
// The search is a linear scan in registration order that stops at the first
// user under Threshold. When several users qualify, the earliest registered
// one wins even if a later one is closer.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// Threshold is the Euclidean distance under which two descriptors are the same person.
const Threshold = 0.6

var ErrDimensionMismatch = errors.New("descriptor length mismatch")

// UserSource is the read side of the user store.
type UserSource interface {
	LoadAll(ctx context.Context) ([]domain.User, error)
}

// FirstWithinFinder is implemented by stores that can run the first-match
// scan themselves (e.g. in SQL). Results must be identical to the linear scan.
type FirstWithinFinder interface {
	FirstWithin(ctx context.Context, query []float64, threshold float64) (*domain.Match, error)
}

type Matcher struct {
	users UserSource
}

func New(users UserSource) *Matcher {
	return &Matcher{users: users}
}

// FindMatch returns the first registered user within Threshold of query, or
// nil when nobody matches.
func (m *Matcher) FindMatch(ctx context.Context, query []float64) (*domain.Match, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("find match: %w: empty query", ErrDimensionMismatch)
	}

	if finder, ok := m.users.(FirstWithinFinder); ok {
		match, err := finder.FirstWithin(ctx, query, Threshold)
		if err != nil {
			return nil, fmt.Errorf("find match: %w", err)
		}
		return match, nil
	}

	users, err := m.users.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}

	return FirstWithin(users, query, Threshold)
}

// FirstWithin scans users in order and returns the first one whose descriptor
// is strictly closer than threshold.
func FirstWithin(users []domain.User, query []float64, threshold float64) (*domain.Match, error) {
	for i := range users {
		d, err := Distance(users[i].FaceEncoding, query)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", users[i].ID, err)
		}
		if d < threshold {
			return &domain.Match{User: users[i], Distance: d}, nil
		}
	}
	return nil, nil
}

// Distance is the Euclidean distance between two descriptors of equal length.
func Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}
