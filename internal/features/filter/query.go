package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Query parameter names shared by every list endpoint.
const (
	ParamText = "q"
	ParamFrom = "from"
	ParamTo   = "to"
)

var ErrInvalidDate = errors.New("invalid date filter")

// ParseQuery builds Criteria from query-string values. Only the declared
// facet names are read; each holds comma-joined values. Absent or blank
// parameters leave the corresponding group unconstrained.
func ParseQuery(values map[string]string, facetNames []string) (Criteria, error) {
	facets := make(map[string][]string)
	for _, name := range facetNames {
		if vals := SplitList(values[name]); len(vals) > 0 {
			facets[name] = vals
		}
	}

	var rng DateRange
	if raw := strings.TrimSpace(values[ParamFrom]); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: from=%q", ErrInvalidDate, raw)
		}
		rng.Start = &t
	}
	if raw := strings.TrimSpace(values[ParamTo]); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: to=%q", ErrInvalidDate, raw)
		}
		if dateOnly {
			// A bare date covers the whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.End = &t
	}
	if rng.Start != nil && rng.End != nil && rng.Start.After(*rng.End) {
		return Criteria{}, fmt.Errorf("%w: from is after to", ErrInvalidDate)
	}

	return NewCriteria(values[ParamText], facets, &rng), nil
}

// SplitList splits a comma-joined parameter, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}
