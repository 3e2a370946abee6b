package visibility

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the caller's functional role, taken from the validated token.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleSale    Role = "SALE"
	RoleSupport Role = "SUPPORT"
)

// KnownRoles lists every role the matrix may grant capabilities to.
var KnownRoles = []Role{RoleAdmin, RoleManager, RoleSale, RoleSupport}

var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalises a role claim. Anything outside KnownRoles fails with
// ErrUnknownRole and must be treated as "no access".
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range KnownRoles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Navigation section codes
const (
	SectionDashboard = "dashboard"
	SectionLeads     = "leads"
	SectionDeals     = "deals"
	SectionCustomers = "customers"
	SectionTickets   = "tickets"
	SectionReports   = "reports"
	SectionAdmin     = "admin"
)

// Admin section items
const (
	ItemUsers       = "users"
	ItemDepartments = "departments"
	ItemProducts    = "products"
	ItemRoles       = "roles"
	ItemShareConfig = "shareConfig"
)

// Section is one navigation entry with its optional sub-items.
type Section struct {
	Code  string   `json:"code" yaml:"code"`
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// Capability is one cell key of the matrix. An empty Item addresses the
// section itself.
type Capability struct {
	Section string
	Item    string
}

// RecordScope decides whether a single record is visible to a role.
type RecordScope func(record any) bool

// AllowAll is the scope of every known role.
func AllowAll(any) bool { return true }

// DenyAll is the scope of unknown roles.
func DenyAll(any) bool { return false }
