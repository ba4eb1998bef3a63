package domain

import "time"

// ValidateSchedule checks the schedule parameters a rule is stored with.
// Exactly one of day_of_month / interval_days is meaningful, selected by
// the frequency.
func ValidateSchedule(rule Rule) error {
	switch rule.Frequency {
	case FrequencyMonthly:
		if rule.DayOfMonth < 1 || rule.DayOfMonth > 28 {
			return ErrInvalidDayOfMonth
		}
	case FrequencyCustom:
		if rule.IntervalDays < 1 {
			return ErrInvalidIntervalDays
		}
	case FrequencyWeekly, FrequencyQuarterly, FrequencyYearly:
	default:
		return ErrInvalidFrequency
	}
	return nil
}

// NextRun computes the run date following from, per the rule's cadence.
// The result is always strictly after from.
//
// Monthly rules fire on the rule's day_of_month; when the target month is
// shorter than the anchor day, the date clamps to the last day of that
// month. Quarterly and yearly rules keep from's day with the same clamp
// (a Feb-29 anchor lands on Feb-28 in non-leap years).
func NextRun(rule Rule, from time.Time) (time.Time, error) {
	switch rule.Frequency {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil

	case FrequencyMonthly:
		if rule.DayOfMonth < 1 {
			return time.Time{}, ErrInvalidDayOfMonth
		}
		candidate := clampedDate(from.Year(), from.Month(), rule.DayOfMonth, from)
		if candidate.After(from) {
			return candidate, nil
		}
		return clampedDate(from.Year(), from.Month()+1, rule.DayOfMonth, from), nil

	case FrequencyQuarterly:
		return addMonthsClamped(from, 3), nil

	case FrequencyYearly:
		return addMonthsClamped(from, 12), nil

	case FrequencyCustom:
		if rule.IntervalDays < 1 {
			return time.Time{}, ErrInvalidIntervalDays
		}
		return from.AddDate(0, 0, rule.IntervalDays), nil
	}
	return time.Time{}, ErrInvalidFrequency
}

// IsDue reports whether the rule should fire at now. Inactive or expired
// rules are never due.
func IsDue(rule Rule, now time.Time) bool {
	if !rule.IsActive || rule.NextRunAt == nil {
		return false
	}
	if rule.NextRunAt.After(now) {
		return false
	}
	if rule.EndDate != nil && rule.NextRunAt.After(*rule.EndDate) {
		return false
	}
	if rule.MaxOccurrences != nil && rule.OccurrencesCount >= *rule.MaxOccurrences {
		return false
	}
	return true
}

// HasExpired reports whether the rule is finished once candidateNextRun
// would be its next slot.
func HasExpired(rule Rule, candidateNextRun time.Time) bool {
	if rule.EndDate != nil && candidateNextRun.After(*rule.EndDate) {
		return true
	}
	if rule.MaxOccurrences != nil && rule.OccurrencesCount >= *rule.MaxOccurrences {
		return true
	}
	return false
}

// clampedDate builds a date in the given month, clamping day to the month
// length. Month may be outside 1-12; time.Date normalizes it.
func clampedDate(year int, month time.Month, day int, ref time.Time) time.Time {
	first := time.Date(year, month, 1, ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
	if max := daysInMonth(first.Year(), first.Month()); day > max {
		day = max
	}
	return time.Date(first.Year(), first.Month(), day, ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
}

func addMonthsClamped(from time.Time, months int) time.Time {
	shifted := time.Date(from.Year(), from.Month(), 1, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location()).
		AddDate(0, months, 0)
	return clampedDate(shifted.Year(), shifted.Month(), from.Day(), from)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
