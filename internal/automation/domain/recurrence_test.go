package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRunMonthlyStrictlyAfter(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, DayOfMonth: 1}

	next, err := NextRun(rule, date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.February, 1)) {
		t.Fatalf("expected 2024-02-01, got %v", next)
	}
}

func TestNextRunMonthlyLaterInSameMonth(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, DayOfMonth: 15}

	next, err := NextRun(rule, date(2024, time.January, 3))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.January, 15)) {
		t.Fatalf("expected 2024-01-15, got %v", next)
	}
}

func TestNextRunMonthlyClampsShortMonths(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, DayOfMonth: 31}

	next, err := NextRun(rule, date(2024, time.January, 15))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.January, 31)) {
		t.Fatalf("expected 2024-01-31, got %v", next)
	}

	next, err = NextRun(rule, next)
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.February, 29)) {
		t.Fatalf("expected 2024-02-29 (leap year clamp), got %v", next)
	}

	next, err = NextRun(rule, next)
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.March, 31)) {
		t.Fatalf("expected 2024-03-31, got %v", next)
	}
}

func TestNextRunMonthlyClampsFebruaryNonLeap(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, DayOfMonth: 30}

	next, err := NextRun(rule, date(2023, time.February, 1))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2023, time.February, 28)) {
		t.Fatalf("expected 2023-02-28, got %v", next)
	}
}

func TestNextRunWeekly(t *testing.T) {
	rule := Rule{Frequency: FrequencyWeekly}

	next, err := NextRun(rule, date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.January, 8)) {
		t.Fatalf("expected 2024-01-08, got %v", next)
	}
}

func TestNextRunQuarterlyKeepsDay(t *testing.T) {
	rule := Rule{Frequency: FrequencyQuarterly}

	next, err := NextRun(rule, date(2024, time.January, 31))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.April, 30)) {
		t.Fatalf("expected 2024-04-30 (clamped), got %v", next)
	}
}

func TestNextRunYearlyLeapAnchor(t *testing.T) {
	rule := Rule{Frequency: FrequencyYearly}

	next, err := NextRun(rule, date(2024, time.February, 29))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2025, time.February, 28)) {
		t.Fatalf("expected 2025-02-28, got %v", next)
	}
}

func TestNextRunCustomInterval(t *testing.T) {
	rule := Rule{Frequency: FrequencyCustom, IntervalDays: 14}

	next, err := NextRun(rule, date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if !next.Equal(date(2024, time.January, 15)) {
		t.Fatalf("expected 2024-01-15, got %v", next)
	}
}

func TestNextRunRejectsBadSchedule(t *testing.T) {
	if _, err := NextRun(Rule{Frequency: FrequencyCustom}, date(2024, time.January, 1)); err != ErrInvalidIntervalDays {
		t.Fatalf("expected ErrInvalidIntervalDays, got %v", err)
	}
	if _, err := NextRun(Rule{Frequency: Frequency("daily")}, date(2024, time.January, 1)); err != ErrInvalidFrequency {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
	if _, err := NextRun(Rule{Frequency: FrequencyMonthly, DayOfMonth: 0}, date(2024, time.January, 1)); err != ErrInvalidDayOfMonth {
		t.Fatalf("expected ErrInvalidDayOfMonth, got %v", err)
	}
}

func TestValidateSchedule(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		want error
	}{
		{"monthly ok", Rule{Frequency: FrequencyMonthly, DayOfMonth: 28}, nil},
		{"monthly day too high", Rule{Frequency: FrequencyMonthly, DayOfMonth: 31}, ErrInvalidDayOfMonth},
		{"monthly day too low", Rule{Frequency: FrequencyMonthly, DayOfMonth: 0}, ErrInvalidDayOfMonth},
		{"custom ok", Rule{Frequency: FrequencyCustom, IntervalDays: 7}, nil},
		{"custom missing interval", Rule{Frequency: FrequencyCustom}, ErrInvalidIntervalDays},
		{"weekly ok", Rule{Frequency: FrequencyWeekly}, nil},
		{"unknown frequency", Rule{Frequency: Frequency("hourly")}, ErrInvalidFrequency},
	}

	for _, tc := range cases {
		if got := ValidateSchedule(tc.rule); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsDue(t *testing.T) {
	now := date(2024, time.June, 1)
	past := date(2024, time.May, 1)
	future := date(2024, time.July, 1)
	three := 3

	active := Rule{IsActive: true, NextRunAt: &past}
	if !IsDue(active, now) {
		t.Fatal("expected active rule with past next_run_at to be due")
	}

	inactive := Rule{IsActive: false, NextRunAt: &past}
	if IsDue(inactive, now) {
		t.Fatal("inactive rule must never be due")
	}

	notYet := Rule{IsActive: true, NextRunAt: &future}
	if IsDue(notYet, now) {
		t.Fatal("rule with future next_run_at must not be due")
	}

	exhausted := Rule{IsActive: true, NextRunAt: &past, MaxOccurrences: &three, OccurrencesCount: 3}
	if IsDue(exhausted, now) {
		t.Fatal("rule at max occurrences must not be due")
	}

	ended := Rule{IsActive: true, NextRunAt: &future, EndDate: &past}
	if IsDue(ended, now) {
		t.Fatal("rule past its end date must not be due")
	}

	missing := Rule{IsActive: true}
	if IsDue(missing, now) {
		t.Fatal("rule without next_run_at must not be due")
	}
}

func TestHasExpired(t *testing.T) {
	end := date(2024, time.June, 30)
	three := 3

	if !HasExpired(Rule{EndDate: &end}, date(2024, time.July, 1)) {
		t.Fatal("candidate past end date should expire the rule")
	}
	if HasExpired(Rule{EndDate: &end}, date(2024, time.June, 30)) {
		t.Fatal("candidate on end date should not expire the rule")
	}
	if !HasExpired(Rule{MaxOccurrences: &three, OccurrencesCount: 3}, date(2024, time.July, 1)) {
		t.Fatal("rule at max occurrences should be expired")
	}
	if HasExpired(Rule{MaxOccurrences: &three, OccurrencesCount: 2}, date(2024, time.July, 1)) {
		t.Fatal("rule below max occurrences should not be expired")
	}
}
