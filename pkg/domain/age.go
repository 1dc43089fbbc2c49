package domain

import "time"

// IsAtLeast reports whether someone born on birthDate has turned years old
// at now. Calendar arithmetic handles leap-day birthdays: a 29 Feb birthday
// rolls to 1 Mar in non-leap years.
func IsAtLeast(birthDate, now time.Time, years int) bool {
	return !now.UTC().Before(birthDate.UTC().AddDate(years, 0, 0))
}

// YearsBetween returns the whole-year difference used by the mock age
// circuit. It deliberately ignores month and day.
func YearsBetween(birthYear, currentYear int) int {
	return currentYear - birthYear
}
