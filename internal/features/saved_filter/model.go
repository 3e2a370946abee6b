package saved_filter

import (
	"strings"
	"time"
)

// Modules whose list endpoints accept saved filters
var Modules = []string{"leads", "deals", "tickets"}

// SavedFilter is a named set of list criteria in query-string form. Values
// are kept raw so that a saved "to" date keeps its whole-day meaning.
type SavedFilter struct {
	ID         string              `json:"id" bson:"_id"`
	Name       string              `json:"name" bson:"name"`
	Slug       string              `json:"slug" bson:"slug"`
	ModuleName string              `json:"module_name" bson:"module_name"`
	UserID     string              `json:"user_id" bson:"user_id"`
	IsPublic   bool                `json:"is_public" bson:"is_public"`
	Text       string              `json:"q,omitempty" bson:"text,omitempty"`
	Facets     map[string][]string `json:"facets,omitempty" bson:"facets,omitempty"`
	From       string              `json:"from,omitempty" bson:"from,omitempty"`
	To         string              `json:"to,omitempty" bson:"to,omitempty"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}

// Values renders the filter back into query-string form.
func (f SavedFilter) Values() map[string]string {
	values := map[string]string{
		"q":    f.Text,
		"from": f.From,
		"to":   f.To,
	}
	for name, vals := range f.Facets {
		values[name] = strings.Join(vals, ",")
	}
	return values
}

// VisibleTo reports whether userID may read the filter.
func (f SavedFilter) VisibleTo(userID string) bool {
	return f.IsPublic || f.UserID == userID
}
