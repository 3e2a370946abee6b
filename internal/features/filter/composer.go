package filter

import (
	"slices"
	"strings"
	"time"
)

// Schema declares how an entity is searched. Each list page supplies its own.
type Schema[T any] struct {
	// SearchFields are matched case-insensitively against the criteria text.
	SearchFields []func(T) string
	// Facets maps a facet name to the record's value for it.
	Facets map[string]func(T) string
	// Date returns the field the date range applies to; ok=false means absent.
	Date func(T) (time.Time, bool)
}

// Apply returns the records matching every criteria group, in their original
// order. It never modifies records and keeps no state between calls.
func Apply[T any](records []T, c Criteria, s Schema[T]) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if Match(rec, c, s) {
			out = append(out, rec)
		}
	}
	return out
}

// Match evaluates a single record.
func Match[T any](rec T, c Criteria, s Schema[T]) bool {
	return textMatch(rec, c, s) &&
		facetsMatch(rec, c, s) &&
		dateMatch(rec, c, s) &&
		scopeMatch(rec, c)
}

func textMatch[T any](rec T, c Criteria, s Schema[T]) bool {
	if c.text == "" {
		return true
	}
	needle := strings.ToLower(c.text)
	for _, field := range s.SearchFields {
		if strings.Contains(strings.ToLower(field(rec)), needle) {
			return true
		}
	}
	return false
}

func facetsMatch[T any](rec T, c Criteria, s Schema[T]) bool {
	for name, allowed := range c.facets {
		get, ok := s.Facets[name]
		if !ok {
			// A facet the entity does not declare cannot be satisfied
			return false
		}
		if !slices.Contains(allowed, get(rec)) {
			return false
		}
	}
	return true
}

func dateMatch[T any](rec T, c Criteria, s Schema[T]) bool {
	if !c.dateRange.Active() {
		return true
	}
	if s.Date == nil {
		return false
	}
	t, ok := s.Date(rec)
	if !ok {
		return false
	}
	return c.dateRange.Contains(t)
}

func scopeMatch[T any](rec T, c Criteria) bool {
	if c.roleScope == nil {
		return true
	}
	return c.roleScope(rec)
}
