package config

import (
	"fmt"
	"time"
)

// ValidateCadence enforces the divisibility rules an operation's
// cadence must satisfy: second-granularity values must divide a minute
// and be under 60s; minute-granularity values must divide an hour and
// be under 60m; hour-granularity values must divide a day evenly or be
// a positive multiple of 24h.
func ValidateCadence(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("config: cadence must be positive, got %s", d)
	}

	switch {
	case d < time.Minute:
		secs := int64(d / time.Second)
		if time.Duration(secs)*time.Second != d {
			return fmt.Errorf("config: sub-minute cadence %s must be a whole number of seconds", d)
		}
		if 60%secs != 0 {
			return fmt.Errorf("config: second cadence must divide 60")
		}
		return nil
	case d < time.Hour:
		mins := int64(d / time.Minute)
		if time.Duration(mins)*time.Minute != d {
			return fmt.Errorf("config: sub-hour cadence %s must be a whole number of minutes", d)
		}
		if 60%mins != 0 {
			return fmt.Errorf("config: minute cadence must divide 60")
		}
		return nil
	default:
		hours := int64(d / time.Hour)
		if time.Duration(hours)*time.Hour != d {
			return fmt.Errorf("config: cadence %s must be a whole number of hours", d)
		}
		if hours < 24 {
			if 24%hours != 0 {
				return fmt.Errorf("config: hour cadence must divide 24")
			}
			return nil
		}
		if hours%24 != 0 {
			return fmt.Errorf("config: cadence over 24h must be a multiple of 24h")
		}
		return nil
	}
}

// NextTick returns the next wall-clock instant at or after now that is
// congruent to 0 mod cadence within the local day, computed from the
// current time rather than a running base so the scheduler cannot drift.
func NextTick(now time.Time, cadence time.Duration) time.Time {
	now = now.Local()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(midnight)
	rem := elapsed % cadence
	if rem == 0 {
		return now
	}
	return now.Add(cadence - rem)
}
