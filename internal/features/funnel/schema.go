package funnel

import (
	"time"

	"go-crm-funnel/internal/features/filter"
)

// Facet names accepted by the lead and deal list endpoints
const (
	FacetStage = "stage"
	FacetOwner = "owner_id"
)

var FacetNames = []string{FacetStage, FacetOwner}

// RecordSchema is how leads and deals are searched.
var RecordSchema = filter.Schema[FunnelRecord]{
	SearchFields: []func(FunnelRecord) string{
		func(r FunnelRecord) string { return r.Name },
		func(r FunnelRecord) string { return r.Company },
		func(r FunnelRecord) string { return r.Email },
	},
	Facets: map[string]func(FunnelRecord) string{
		FacetStage: func(r FunnelRecord) string { return r.StageID },
		FacetOwner: func(r FunnelRecord) string { return r.OwnerID },
	},
	Date: func(r FunnelRecord) (time.Time, bool) {
		if r.ExpectedCloseDate == nil {
			return time.Time{}, false
		}
		return *r.ExpectedCloseDate, true
	},
}
