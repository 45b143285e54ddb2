package initiator

import (
	"errors"
	"time"
)

// Schedule errors.
var (
	// ErrEmptySchedule indicates a schedule with no entries.
	ErrEmptySchedule = errors.New("reconnect schedule is empty")

	// ErrNonPositiveInterval indicates a zero or negative interval.
	ErrNonPositiveInterval = errors.New("reconnect interval must be positive")
)

// Schedule is an immutable ordered list of reconnect delays.
// Failure #1 waits the first entry, failure #2 the second, and so on;
// failure counts beyond the list length stick at the final entry.
type Schedule []time.Duration

// NewSchedule creates a schedule from the given intervals.
// The schedule must be non-empty with positive entries.
func NewSchedule(intervals ...time.Duration) (Schedule, error) {
	if len(intervals) == 0 {
		return nil, ErrEmptySchedule
	}
	for _, d := range intervals {
		if d <= 0 {
			return nil, ErrNonPositiveInterval
		}
	}
	s := make(Schedule, len(intervals))
	copy(s, intervals)
	return s, nil
}

// ScheduleFromSeconds creates a schedule from seconds-based configuration.
func ScheduleFromSeconds(seconds []int) (Schedule, error) {
	intervals := make([]time.Duration, len(seconds))
	for i, s := range seconds {
		intervals[i] = time.Duration(s) * time.Second
	}
	return NewSchedule(intervals...)
}

// DefaultSchedule returns the default reconnect schedule:
// 1s, 2s, 4s, 8s, 16s, 32s, then 60s forever.
func DefaultSchedule() Schedule {
	return Schedule{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		60 * time.Second, // ceiling
	}
}

// Delay returns the wait before the next attempt for the given consecutive
// failure count. Counts <= 0 map to the first entry; counts beyond the
// schedule length map to the last (sticky ceiling, never cycles).
func (s Schedule) Delay(failureCount int) time.Duration {
	index := failureCount - 1
	if index < 0 {
		index = 0
	}
	if index >= len(s) {
		index = len(s) - 1
	}
	return s[index]
}
