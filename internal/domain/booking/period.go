package booking

import (
	"time"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

// Period is a half-open rental interval [Start, End).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod validates a requested rental interval against now: start must not
// be in the past and end must be strictly after start.
func NewPeriod(start, end, now time.Time) (Period, error) {
	if start.IsZero() {
		return Period{}, domain.NewValidationError("booking start is required")
	}
	if end.IsZero() {
		return Period{}, domain.NewValidationError("booking end is required")
	}
	if start.Before(now) {
		return Period{}, domain.NewValidationError("booking start cannot be in the past")
	}
	if !end.After(start) {
		return Period{}, domain.NewValidationError("booking end must be after its start")
	}
	return Period{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
func (p Period) Overlaps(other Period) bool {
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// Duration returns End - Start.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}
