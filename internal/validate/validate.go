// Package validate checks theorem fields before they reach the store.
// Both the envelope API and bulk ingestion funnel through these checks,
// so a corpus file and a CLI flag reject the same bad input the same way.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/normlens/normlens/internal/model"
)

// ParseOperator normalizes a deontic operator name
func ParseOperator(v string) (model.DeonticOperator, error) {
	op := model.DeonticOperator(strings.ToUpper(strings.TrimSpace(v)))
	if !op.Valid() {
		return "", fmt.Errorf("unknown operator: %q", v)
	}
	return op, nil
}

// Proposition requires non-empty action text
func Proposition(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("proposition is required")
	}
	return nil
}

// Strength checks that precedent strength is in [0,1]
func Strength(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("precedent strength must be in [0,1], got %g", v)
	}
	return nil
}

// ParseDate accepts RFC 3339 or a plain YYYY-MM-DD date
func ParseDate(field, v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: cannot parse %q, want RFC 3339 or YYYY-MM-DD", field, v)
}

// ParseScope builds a temporal scope from optional date strings. An
// empty start defaults to now; an empty end means unbounded.
func ParseScope(start, end string) (model.TemporalScope, error) {
	startAt := time.Now().UTC()
	if strings.TrimSpace(start) != "" {
		t, err := ParseDate("start_date", start)
		if err != nil {
			return model.TemporalScope{}, err
		}
		startAt = t
	}
	if strings.TrimSpace(end) == "" {
		return model.UnboundedScope(startAt), nil
	}
	endAt, err := ParseDate("end_date", end)
	if err != nil {
		return model.TemporalScope{}, err
	}
	if endAt.Before(startAt) {
		return model.TemporalScope{}, fmt.Errorf("end_date %s precedes start_date %s",
			endAt.Format("2006-01-02"), startAt.Format("2006-01-02"))
	}
	return model.BoundedScope(startAt, endAt), nil
}
