package visibility

import (
	"fmt"
	"slices"
)

// Gate answers navigation and record visibility questions from a single
// (role, capability) lookup table. It is read-only after construction.
type Gate struct {
	sections []Section
	matrix   map[Role]map[Capability]bool
}

// NewGate validates cfg and builds the lookup table.
func NewGate(cfg MatrixConfig) (*Gate, error) {
	catalog := make(map[string]map[string]bool, len(cfg.Sections))
	for _, s := range cfg.Sections {
		if s.Code == "" {
			return nil, fmt.Errorf("visibility matrix: section with empty code")
		}
		if _, dup := catalog[s.Code]; dup {
			return nil, fmt.Errorf("visibility matrix: duplicate section %q", s.Code)
		}
		items := make(map[string]bool, len(s.Items))
		for _, it := range s.Items {
			items[it] = true
		}
		catalog[s.Code] = items
	}

	matrix := make(map[Role]map[Capability]bool, len(cfg.Roles))
	for role, grant := range cfg.Roles {
		if _, err := ParseRole(string(role)); err != nil {
			return nil, fmt.Errorf("visibility matrix: %w", err)
		}
		caps := make(map[Capability]bool)
		for _, code := range grant.Sections {
			if _, ok := catalog[code]; !ok {
				return nil, fmt.Errorf("visibility matrix: role %s grants unknown section %q", role, code)
			}
			caps[Capability{Section: code}] = true
		}
		for code, items := range grant.Items {
			known, ok := catalog[code]
			if !ok {
				return nil, fmt.Errorf("visibility matrix: role %s grants items of unknown section %q", role, code)
			}
			for _, it := range items {
				if !known[it] {
					return nil, fmt.Errorf("visibility matrix: role %s grants unknown item %s/%s", role, code, it)
				}
				caps[Capability{Section: code, Item: it}] = true
			}
		}
		matrix[role] = caps
	}

	sections := make([]Section, len(cfg.Sections))
	for i, s := range cfg.Sections {
		sections[i] = Section{Code: s.Code, Items: slices.Clone(s.Items)}
	}
	return &Gate{sections: sections, matrix: matrix}, nil
}

// Allowed reports whether role may reach section (item == "") or an item
// inside it. An item is never reachable when its section is not.
func (g *Gate) Allowed(role Role, section, item string) bool {
	caps, ok := g.matrix[role]
	if !ok {
		return false
	}
	if !caps[Capability{Section: section}] {
		return false
	}
	if item == "" {
		return true
	}
	return caps[Capability{Section: section, Item: item}]
}

// CanAccess is Allowed for a raw role claim; unknown roles get nothing.
func (g *Gate) CanAccess(role string, section string) bool {
	r, err := ParseRole(role)
	if err != nil {
		return false
	}
	return g.Allowed(r, section, "")
}

// SectionsFor returns the section codes role may navigate to, in menu order.
func (g *Gate) SectionsFor(role Role) []string {
	out := []string{}
	for _, s := range g.sections {
		if g.Allowed(role, s.Code, "") {
			out = append(out, s.Code)
		}
	}
	return out
}

// ItemsFor returns the items of section visible to role, in menu order.
func (g *Gate) ItemsFor(role Role, section string) []string {
	out := []string{}
	for _, s := range g.sections {
		if s.Code != section {
			continue
		}
		for _, it := range s.Items {
			if g.Allowed(role, section, it) {
				out = append(out, it)
			}
		}
	}
	return out
}

// Navigation returns the menu tree visible to role.
func (g *Gate) Navigation(role Role) []Section {
	out := []Section{}
	for _, code := range g.SectionsFor(role) {
		out = append(out, Section{Code: code, Items: g.ItemsFor(role, code)})
	}
	return out
}

// RecordScopeFor returns the record-level predicate for role. Known roles see
// every record of the sections they can reach; unknown roles see nothing.
func (g *Gate) RecordScopeFor(role Role) RecordScope {
	if _, ok := g.matrix[role]; !ok {
		return DenyAll
	}
	return AllowAll
}
