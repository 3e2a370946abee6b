package sla

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func TestIsOverdueBoundary(t *testing.T) {
	deadline := t0.Add(48 * time.Hour)

	assert.False(t, IsOverdue(deadline, deadline))
	assert.True(t, IsOverdue(deadline, deadline.Add(time.Nanosecond)))
	assert.True(t, IsOverdue(deadline, deadline.Add(time.Second)))
	assert.False(t, IsOverdue(deadline, deadline.Add(-time.Second)))
}

func TestRemaining(t *testing.T) {
	deadline := t0.Add(2 * time.Hour)
	assert.Equal(t, 2*time.Hour, Remaining(deadline, t0))
	assert.Equal(t, -time.Hour, Remaining(deadline, t0.Add(3*time.Hour)))
}

func TestProgressRatio(t *testing.T) {
	deadline := t0.Add(10 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{name: "before creation clamps to zero", now: t0.Add(-time.Hour), want: 0},
		{name: "at creation", now: t0, want: 0},
		{name: "midway", now: t0.Add(5 * time.Hour), want: 0.5},
		{name: "at deadline", now: deadline, want: 1},
		{name: "past deadline clamps to one", now: deadline.Add(24 * time.Hour), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProgressRatio(t0, deadline, tt.now)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestProgressRatioMonotonic(t *testing.T) {
	deadline := t0.Add(7 * time.Hour)
	prev := -1.0
	for now := t0.Add(-2 * time.Hour); now.Before(deadline.Add(2 * time.Hour)); now = now.Add(17 * time.Minute) {
		got, err := ProgressRatio(t0, deadline, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
}

func TestProgressRatioDegenerate(t *testing.T) {
	for _, deadline := range []time.Time{t0, t0.Add(-time.Minute)} {
		_, err := ProgressRatio(t0, deadline, t0)
		var degenerate *DegenerateIntervalError
		require.ErrorAs(t, err, &degenerate)
		assert.Equal(t, deadline, degenerate.Deadline)
	}
}

func TestHumanizeRemaining(t *testing.T) {
	created := t0
	deadline := created.Add(48 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want Breakdown
	}{
		{
			name: "overdue by two hours",
			now:  created.Add(50 * time.Hour),
			want: Breakdown{Overdue: true, Hours: 2},
		},
		{
			name: "more than a day left",
			now:  created.Add(10*time.Hour + 30*time.Minute),
			want: Breakdown{Days: 1, Hours: 13},
		},
		{
			name: "exactly a day left",
			now:  created.Add(24 * time.Hour),
			want: Breakdown{Days: 1},
		},
		{
			name: "under a day left",
			now:  deadline.Add(-(3*time.Hour + 25*time.Minute + 40*time.Second)),
			want: Breakdown{Hours: 3, Minutes: 25},
		},
		{
			name: "at deadline",
			now:  deadline,
			want: Breakdown{},
		},
		{
			name: "overdue by days",
			now:  deadline.Add(75 * time.Hour),
			want: Breakdown{Overdue: true, Days: 3, Hours: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanizeRemaining(deadline, tt.now))
		})
	}
}

func TestHumanizeRemainingSaturated(t *testing.T) {
	// Sub clamps to the minimum duration this far apart
	deadline := time.Time{}
	now := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Duration(math.MinInt64), Remaining(deadline, now))

	b := HumanizeRemaining(deadline, now)
	assert.True(t, b.Overdue)
	assert.Equal(t, int(time.Duration(math.MaxInt64)/(24*time.Hour)), b.Days)
	assert.GreaterOrEqual(t, b.Hours, 0)
	assert.Zero(t, b.Minutes)
}

func TestDeadlineFor(t *testing.T) {
	table := DefaultPolicies()

	got, err := table.DeadlineFor("urgent", t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(4*time.Hour), got)

	_, err = table.DeadlineFor("whenever", t0)
	assert.Error(t, err)

	table["broken"] = Policy{Priority: "broken"}
	_, err = table.DeadlineFor("broken", t0)
	var degenerate *DegenerateIntervalError
	assert.ErrorAs(t, err, &degenerate)
}
