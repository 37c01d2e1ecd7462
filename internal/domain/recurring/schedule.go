package recurring

import "time"

// Schedule is the pure due-date calculation for a recurring payment.
// All arithmetic is calendar-based; no clock is consulted.
type Schedule struct {
	StartDate  time.Time
	EndDate    *time.Time
	Frequency  Frequency
	DayOfMonth *int
	DayOfWeek  *int
}

// NextDueDate returns the first due date strictly after asOf.
// If the schedule has not started yet the start date itself is returned
// unchanged, even when it does not sit on the configured anchor; anchor
// alignment begins with the occurrence after the start.
// Month-based frequencies clamp the anchor day to the length of the target
// month, so a payment anchored on the 31st falls due on Feb 28 (29 in leap
// years) and returns to the 31st in longer months.
func (s Schedule) NextDueDate(asOf time.Time) time.Time {
	start := dateOnly(s.StartDate)
	if start.After(asOf) {
		return start
	}

	due := s.firstOccurrence()
	for !due.After(asOf) {
		due = s.advance(due)
	}
	return due
}

// Occurrences returns every due date in (from, until], oldest first.
// An end date caps the series regardless of the window.
func (s Schedule) Occurrences(from, until time.Time) []time.Time {
	var dates []time.Time
	due := s.NextDueDate(from)
	for !due.After(until) {
		if s.EndDate != nil && due.After(*s.EndDate) {
			break
		}
		dates = append(dates, due)
		// step via NextDueDate so an off-anchor start date does not drift
		// the rest of the series off its anchor
		due = s.NextDueDate(due)
	}
	return dates
}

// firstOccurrence aligns the start date to the schedule anchors
func (s Schedule) firstOccurrence() time.Time {
	start := dateOnly(s.StartDate)

	if s.Frequency.days() != 0 {
		if s.DayOfWeek != nil && (s.Frequency == FrequencyWeekly || s.Frequency == FrequencyBiweekly) {
			return alignToWeekday(start, time.Weekday(*s.DayOfWeek))
		}
		return start
	}

	anchor := s.anchorDay(start)
	day := clampDay(anchor, start.Year(), start.Month())
	aligned := time.Date(start.Year(), start.Month(), day, 0, 0, 0, 0, start.Location())
	if aligned.Before(start) {
		return s.advance(aligned)
	}
	return aligned
}

// advance steps one period forward from a known due date
func (s Schedule) advance(due time.Time) time.Time {
	if d := s.Frequency.days(); d != 0 {
		return due.AddDate(0, 0, d)
	}

	anchor := s.anchorDay(dateOnly(s.StartDate))
	year, month, _ := due.Date()
	month += time.Month(s.Frequency.months())
	// normalize without day overflow before clamping
	target := time.Date(year, month, 1, 0, 0, 0, 0, due.Location())
	day := clampDay(anchor, target.Year(), target.Month())
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, due.Location())
}

// anchorDay is the configured day of month, falling back to the start day
func (s Schedule) anchorDay(start time.Time) int {
	if s.DayOfMonth != nil {
		return *s.DayOfMonth
	}
	return start.Day()
}

// clampDay limits day to the number of days in the given month
func clampDay(day, year int, month time.Month) int {
	last := daysInMonth(year, month)
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

// daysInMonth returns the number of days in a calendar month
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// alignToWeekday moves t forward to the given weekday (no-op if already there)
func alignToWeekday(t time.Time, weekday time.Weekday) time.Time {
	diff := (int(weekday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, diff)
}

// dateOnly truncates a timestamp to midnight in its own location
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
