package filter

import (
	"testing"
	"time"

	"go-crm-funnel/internal/features/visibility"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type deal struct {
	ID      string
	Name    string
	Company string
	Email   string
	Stage   string
	Owner   string
	Closing *time.Time
}

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var dealSchema = Schema[deal]{
	SearchFields: []func(deal) string{
		func(d deal) string { return d.Name },
		func(d deal) string { return d.Company },
		func(d deal) string { return d.Email },
	},
	Facets: map[string]func(deal) string{
		"stage":    func(d deal) string { return d.Stage },
		"owner_id": func(d deal) string { return d.Owner },
	},
	Date: func(d deal) (time.Time, bool) {
		if d.Closing == nil {
			return time.Time{}, false
		}
		return *d.Closing, true
	},
}

func sampleDeals() []deal {
	return []deal{
		{ID: "d1", Name: "Website revamp", Company: "Acme", Email: "ops@acme.io", Stage: "NEW", Owner: "u1", Closing: day("2024-03-01")},
		{ID: "d2", Name: "ERP rollout", Company: "Globex", Email: "cto@globex.com", Stage: "PROPOSAL", Owner: "u2", Closing: day("2024-03-15")},
		{ID: "d3", Name: "Support renewal", Company: "Initech", Email: "it@initech.com", Stage: "NEGOTIATION", Owner: "u1"},
		{ID: "d4", Name: "Data migration", Company: "Acme", Email: "data@acme.io", Stage: "WON", Owner: "u3", Closing: day("2024-04-01")},
		{ID: "d5", Name: "Cloud audit", Company: "Umbrella", Email: "sec@umbrella.org", Stage: "LOST", Owner: "u2", Closing: day("2024-02-10")},
	}
}

func ids(ds []deal) []string {
	out := []string{}
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "empty criteria keeps everything in order",
			criteria: NewCriteria("", nil, nil),
			want:     []string{"d1", "d2", "d3", "d4", "d5"},
		},
		{
			name:     "stage facet is OR within",
			criteria: NewCriteria("", map[string][]string{"stage": {"PROPOSAL", "NEGOTIATION"}}, nil),
			want:     []string{"d2", "d3"},
		},
		{
			name:     "facets are AND across",
			criteria: NewCriteria("", map[string][]string{"stage": {"NEW", "NEGOTIATION", "LOST"}, "owner_id": {"u1"}}, nil),
			want:     []string{"d1", "d3"},
		},
		{
			name:     "facet value present nowhere",
			criteria: NewCriteria("", map[string][]string{"stage": {"ARCHIVED"}}, nil),
			want:     []string{},
		},
		{
			name:     "empty facet set is no constraint",
			criteria: NewCriteria("", map[string][]string{"stage": {}}, nil),
			want:     []string{"d1", "d2", "d3", "d4", "d5"},
		},
		{
			name:     "undeclared facet matches nothing",
			criteria: NewCriteria("", map[string][]string{"industry": {"retail"}}, nil),
			want:     []string{},
		},
		{
			name:     "text is case-insensitive across fields",
			criteria: NewCriteria("ACME", nil, nil),
			want:     []string{"d1", "d4"},
		},
		{
			name:     "text matches email",
			criteria: NewCriteria("globex.com", nil, nil),
			want:     []string{"d2"},
		},
		{
			name:     "whitespace text is empty",
			criteria: NewCriteria("   ", nil, nil),
			want:     []string{"d1", "d2", "d3", "d4", "d5"},
		},
		{
			name:     "date range inclusive and excludes missing dates",
			criteria: NewCriteria("", nil, &DateRange{Start: day("2024-03-01"), End: day("2024-04-01")}),
			want:     []string{"d1", "d2", "d4"},
		},
		{
			name:     "open ended range",
			criteria: NewCriteria("", nil, &DateRange{End: day("2024-03-01")}),
			want:     []string{"d1", "d5"},
		},
		{
			name:     "all groups combined",
			criteria: NewCriteria("acme", map[string][]string{"owner_id": {"u3"}}, &DateRange{Start: day("2024-03-20")}),
			want:     []string{"d4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(sampleDeals(), tt.criteria, dealSchema))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyRoleScope(t *testing.T) {
	onlyU2 := func(r any) bool { return r.(deal).Owner == "u2" }

	got := Apply(sampleDeals(), NewCriteria("", nil, nil).WithRoleScope(onlyU2), dealSchema)
	assert.Equal(t, []string{"d2", "d5"}, ids(got))

	got = Apply(sampleDeals(), NewCriteria("", nil, nil).WithRoleScope(visibility.DenyAll), dealSchema)
	assert.Empty(t, got)

	got = Apply(sampleDeals(), NewCriteria("", nil, nil).WithRoleScope(visibility.AllowAll), dealSchema)
	assert.Len(t, got, 5)
}

func TestApplyIsPureAndDoesNotAlias(t *testing.T) {
	in := sampleDeals()
	c := NewCriteria("", map[string][]string{"stage": {"WON"}}, nil)

	first := Apply(in, c, dealSchema)
	second := Apply(in, c, dealSchema)
	assert.Equal(t, first, second)

	all := Apply(in, NewCriteria("", nil, nil), dealSchema)
	all[0].Name = "changed"
	assert.Equal(t, "Website revamp", in[0].Name)
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, NewCriteria("x", nil, nil), dealSchema)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCriteriaIsImmutable(t *testing.T) {
	facets := map[string][]string{"stage": {"NEW"}}
	start := *day("2024-01-01")
	rng := &DateRange{Start: &start}

	c := NewCriteria("x", facets, rng)
	facets["stage"][0] = "WON"
	facets["owner_id"] = []string{"u1"}
	start = start.AddDate(1, 0, 0)

	assert.Equal(t, []string{"NEW"}, c.Facet("stage"))
	assert.Equal(t, []string{"stage"}, c.FacetNames())
	got, ok := c.DateRange()
	assert.True(t, ok)
	assert.Equal(t, 2024, got.Start.Year())

	got.Start = nil
	again, _ := c.DateRange()
	assert.NotNil(t, again.Start)

	scoped := c.WithRoleScope(visibility.DenyAll)
	assert.Nil(t, c.roleScope)
	assert.NotNil(t, scoped.roleScope)
}
