package recycle

import (
	"fmt"
	"math"
	"time"
)

// The shell reports deletion times as automation dates: fractional days
// since 1899-12-30 00:00 UTC, with the fraction encoding the time of day.
// Conversion to Unix seconds goes through the platform's own intermediate
// forms: a broken-down calendar time, then 100-nanosecond ticks since
// 1601-01-01.
const (
	ticksPerSecond = 10_000_000

	// secondsToUnixEpoch is the offset between the tick epoch (1601) and
	// the Unix epoch (1970)
	secondsToUnixEpoch = 11_644_473_600

	secondsPerDay = 86_400
)

// Calendar range convertible to tick counts: 1601-01-01 through the end
// of year 9999
var (
	minCalendarTime = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxCalendarTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// DateRangeError reports an automation date that does not denote a
// representable calendar time. The offending input is preserved so
// callers can log it.
type DateRangeError struct {
	Date float64
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("automation date %v is outside the representable calendar range", e.Date)
}

// VariantTimeToUnix converts an automation date to Unix seconds, rounded
// to whole seconds the way the platform's own conversion does.
func VariantTimeToUnix(date float64) (int64, error) {
	t, err := variantTimeToCalendar(date)
	if err != nil {
		return 0, err
	}
	// The calendar range check above guarantees t is not before 1601, so
	// the tick count fits in uint64. Conversion deliberately round-trips
	// through ticks rather than subtracting epochs directly.
	ticks := uint64(t.Unix()+secondsToUnixEpoch) * ticksPerSecond
	return WindowsTicksToUnixSeconds(ticks), nil
}

// variantTimeToCalendar expands an automation date into a calendar time.
func variantTimeToCalendar(date float64) (time.Time, error) {
	if math.IsNaN(date) || math.IsInf(date, 0) {
		return time.Time{}, &DateRangeError{Date: date}
	}

	// The day-fraction is always a positive offset into the day, even for
	// dates before the automation epoch.
	days := math.Trunc(date)
	if days < math.MinInt32 || days > math.MaxInt32 {
		return time.Time{}, &DateRangeError{Date: date}
	}
	frac := math.Abs(date - days)
	secs := math.Round(frac * secondsPerDay)

	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	t := base.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)

	if t.Before(minCalendarTime) || t.After(maxCalendarTime) {
		return time.Time{}, &DateRangeError{Date: date}
	}
	return t, nil
}

// WindowsTicksToUnixSeconds converts 100-nanosecond ticks since
// 1601-01-01 into Unix seconds. Sub-second precision is dropped.
func WindowsTicksToUnixSeconds(ticks uint64) int64 {
	return int64(ticks/ticksPerSecond) - secondsToUnixEpoch
}
