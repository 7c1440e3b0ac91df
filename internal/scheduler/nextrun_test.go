package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmpulse/internal/models"
)

func TestNextRun(t *testing.T) {
	base := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		freq models.Frequency
		expr string
		from time.Time
		want time.Time
	}{
		{
			name: "daily adds one calendar day",
			freq: models.FrequencyDaily,
			from: base,
			want: time.Date(2025, time.March, 11, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "weekly adds seven days",
			freq: models.FrequencyWeekly,
			from: base,
			want: time.Date(2025, time.March, 17, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "monthly adds one calendar month",
			freq: models.FrequencyMonthly,
			from: base,
			want: time.Date(2025, time.April, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "monthly from Jan 31 rolls into March, not clamped Feb",
			freq: models.FrequencyMonthly,
			from: time.Date(2025, time.January, 31, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly from Jan 31 in a leap year rolls to March 2",
			freq: models.FrequencyMonthly,
			from: time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "daily across a month boundary",
			freq: models.FrequencyDaily,
			from: time.Date(2025, time.April, 30, 23, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.May, 1, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "custom cron expression",
			freq: models.FrequencyCustom,
			expr: "0 6 * * 1",
			from: time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC), // a Monday afternoon
			want: time.Date(2025, time.March, 17, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(tt.freq, tt.expr, tt.from)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNextRunErrors(t *testing.T) {
	from := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	_, err := NextRun(models.Frequency("hourly"), "", from)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFrequency)

	_, err = NextRun(models.FrequencyCustom, "not a cron expr", from)
	require.Error(t, err)
}

func TestNextRunFromCompletionTimeDrifts(t *testing.T) {
	// The reference time is the actual completion time, so a late execution
	// pushes the next due time later rather than snapping back to the
	// nominal cadence.
	late := time.Date(2025, time.March, 10, 3, 45, 12, 0, time.UTC)
	next, err := NextRun(models.FrequencyDaily, "", late)
	require.NoError(t, err)
	assert.Equal(t, late.AddDate(0, 0, 1), next)
}
