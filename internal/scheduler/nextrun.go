package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"farmpulse/internal/models"
)

// NextRun computes the next due time for a schedule relative to from, which
// is always the actual completion time of an execution. Drift relative to
// the nominal cadence is therefore expected.
//
// The calendar frequencies use AddDate, so a monthly schedule anchored on
// Jan 31 rolls forward into March rather than clamping to the end of
// February. cronExpr is consulted only for FrequencyCustom.
func NextRun(freq models.Frequency, cronExpr string, from time.Time) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	case models.FrequencyCustom:
		spec, err := cron.ParseStandard(cronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
		}
		return spec.Next(from), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
}
