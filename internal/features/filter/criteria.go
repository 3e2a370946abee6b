package filter

import (
	"slices"
	"sort"
	"strings"
	"time"

	"go-crm-funnel/internal/features/visibility"
)

// DateRange is an inclusive range; either bound may be open.
type DateRange struct {
	Start *time.Time `json:"start,omitempty" bson:"start,omitempty"`
	End   *time.Time `json:"end,omitempty" bson:"end,omitempty"`
}

// Active reports whether at least one bound is set.
func (r DateRange) Active() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether t falls within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Criteria is an immutable filter value. Build one per query with
// NewCriteria; the role scope is injected afterwards with WithRoleScope.
type Criteria struct {
	text      string
	facets    map[string][]string
	dateRange DateRange
	roleScope visibility.RecordScope
}

// NewCriteria copies its inputs. Facets with no values are dropped since an
// empty set places no constraint.
func NewCriteria(text string, facets map[string][]string, dateRange *DateRange) Criteria {
	c := Criteria{
		text:   strings.TrimSpace(text),
		facets: make(map[string][]string, len(facets)),
	}
	for name, values := range facets {
		if len(values) == 0 {
			continue
		}
		c.facets[name] = slices.Clone(values)
	}
	if dateRange != nil {
		c.dateRange = copyRange(*dateRange)
	}
	return c
}

func copyRange(r DateRange) DateRange {
	var out DateRange
	if r.Start != nil {
		s := *r.Start
		out.Start = &s
	}
	if r.End != nil {
		e := *r.End
		out.End = &e
	}
	return out
}

// WithRoleScope returns a copy of c narrowed by scope.
func (c Criteria) WithRoleScope(scope visibility.RecordScope) Criteria {
	out := c
	out.roleScope = scope
	return out
}

func (c Criteria) Text() string { return c.text }

// Facet returns a copy of the allowed values for name.
func (c Criteria) Facet(name string) []string {
	return slices.Clone(c.facets[name])
}

// FacetNames returns the constrained facet names, sorted.
func (c Criteria) FacetNames() []string {
	names := make([]string, 0, len(c.facets))
	for name := range c.facets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Criteria) DateRange() (DateRange, bool) {
	return copyRange(c.dateRange), c.dateRange.Active()
}

// IsEmpty reports whether c constrains nothing besides an optional role scope.
func (c Criteria) IsEmpty() bool {
	return c.text == "" && len(c.facets) == 0 && !c.dateRange.Active()
}
