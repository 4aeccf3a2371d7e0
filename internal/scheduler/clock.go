package scheduler

import "time"

// DefaultRolloverHour is the local hour at which a new scheduling day
// begins when a deck does not configure its own (§4.A).
const DefaultRolloverHour = 4

// Clock maps wall-clock time to the integer "day number" the scheduler uses
// for New/Review due dates, relative to a deck-wide rollover hour.
type Clock struct {
	creationEpoch int64 // unix seconds of day 0's rollover instant
	rolloverHour  int
	nowFn         func() time.Time
	lastSeenNow   int64 // clamp against clock-going-backwards, §7
}

// NewClock builds a Clock whose day 0 starts at the configured rollover
// hour on or before creation's local date.
func NewClock(creation time.Time, rolloverHour int) *Clock {
	return NewClockAt(creation, rolloverHour, time.Now)
}

// NewClockAt is NewClock with an injectable time source, so tests can drive
// the scheduler's notion of "now" deterministically (design note "Fuzz
// determinism", extended to the clock for the same reason).
func NewClockAt(creation time.Time, rolloverHour int, nowFn func() time.Time) *Clock {
	if rolloverHour < 0 || rolloverHour > 23 {
		rolloverHour = DefaultRolloverHour
	}
	norm := time.Date(creation.Year(), creation.Month(), creation.Day(), rolloverHour, 0, 0, 0, creation.Location())
	if norm.After(creation) {
		norm = norm.AddDate(0, 0, -1)
	}
	return &Clock{
		creationEpoch: norm.Unix(),
		rolloverHour:  rolloverHour,
		nowFn:         nowFn,
	}
}

// Now returns the current time, clamped to never go backwards within the
// life of this Clock (§7 "clock going backwards").
func (c *Clock) Now() time.Time {
	now := c.nowFn().Unix()
	if now < c.lastSeenNow {
		now = c.lastSeenNow
	}
	c.lastSeenNow = now
	return time.Unix(now, 0)
}

// Today returns the integer day number of Now() relative to the deck's
// creation/rollover instant.
func (c *Clock) Today() int {
	return int((c.Now().Unix() - c.creationEpoch) / 86400)
}

// DayCutoff returns the unix time of the next rollover.
func (c *Clock) DayCutoff() int64 {
	return c.creationEpoch + int64(c.Today()+1)*86400
}
