package filter

import (
	"context"

	common_models "go-crm-funnel/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

// ParamSavedFilter selects a stored filter instead of inline parameters.
const ParamSavedFilter = "filter_id"

// SavedLookup resolves a stored filter for the calling user.
type SavedLookup interface {
	Criteria(ctx context.Context, id, module string, facetNames []string) (Criteria, error)
}

// FromRequest builds criteria for a list endpoint of module, either from the
// saved filter named by filter_id or from the query string.
func FromRequest(c *fiber.Ctx, saved SavedLookup, module string, facetNames []string) (Criteria, error) {
	if id := c.Query(ParamSavedFilter); id != "" {
		if saved == nil {
			return Criteria{}, common_models.ErrNotFound
		}
		return saved.Criteria(c.UserContext(), id, module, facetNames)
	}
	return ParseQuery(c.Queries(), facetNames)
}
