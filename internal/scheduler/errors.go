package scheduler

import "errors"

var (
	// ErrScheduleNotFound is returned by ScheduleStore.Get when the id does
	// not exist. The pipeline reports it as a failed result without creating
	// a history entry.
	ErrScheduleNotFound = errors.New("report schedule not found")

	// ErrSnapshotNotFound is returned by AnalyticsStore.Get before a
	// schedule's first execution; the aggregator then seeds a new snapshot.
	ErrSnapshotNotFound = errors.New("analytics snapshot not found")

	// ErrUnknownFrequency is returned by NextRun for a frequency outside the
	// supported set.
	ErrUnknownFrequency = errors.New("unknown schedule frequency")

	// ErrAlreadyRunning is returned by RunNow when the schedule is currently
	// being executed.
	ErrAlreadyRunning = errors.New("schedule execution already in flight")
)
