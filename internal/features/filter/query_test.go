package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	facetNames := []string{"status", "owner_id"}

	t.Run("absent parameters are unconstrained", func(t *testing.T) {
		c, err := ParseQuery(map[string]string{}, facetNames)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
	})

	t.Run("comma joined facets", func(t *testing.T) {
		c, err := ParseQuery(map[string]string{
			"q":        " acme ",
			"status":   "OPEN, PENDING,,",
			"owner_id": "",
			"ignored":  "x",
		}, facetNames)
		require.NoError(t, err)
		assert.Equal(t, "acme", c.Text())
		assert.Equal(t, []string{"OPEN", "PENDING"}, c.Facet("status"))
		assert.Equal(t, []string{"status"}, c.FacetNames())
	})

	t.Run("date only to covers whole day", func(t *testing.T) {
		c, err := ParseQuery(map[string]string{"from": "2024-05-01", "to": "2024-05-10"}, nil)
		require.NoError(t, err)
		rng, ok := c.DateRange()
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *rng.Start)
		assert.True(t, rng.Contains(time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC)))
		assert.False(t, rng.Contains(time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("rfc3339 bounds are exact", func(t *testing.T) {
		c, err := ParseQuery(map[string]string{"to": "2024-05-10T12:00:00Z"}, nil)
		require.NoError(t, err)
		rng, _ := c.DateRange()
		assert.True(t, rng.Contains(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)))
		assert.False(t, rng.Contains(time.Date(2024, 5, 10, 12, 0, 1, 0, time.UTC)))
	})

	t.Run("bad dates", func(t *testing.T) {
		for _, q := range []map[string]string{
			{"from": "yesterday"},
			{"to": "2024-13-01"},
			{"from": "2024-05-02", "to": "2024-05-01"},
		} {
			_, err := ParseQuery(q, nil)
			assert.ErrorIs(t, err, ErrInvalidDate)
		}
	})
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
}
