package models

import (
	"strconv"
	"time"
)

// Name is the display name, "family_name, first_name".
func (a Author) Name() string {
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan returns the author's age in whole calendar years, measured to the
// year of death or, for living authors, to now.
func (a Author) Lifespan(now time.Time) string {
	if a.DateOfBirth == nil {
		return "Unknown"
	}
	end := now
	if a.DateOfDeath != nil {
		end = *a.DateOfDeath
	}
	return strconv.Itoa(end.Year() - a.DateOfBirth.Year())
}

func (a Author) DateOfBirthFormatted() string {
	if a.DateOfBirth == nil {
		return "Unknown"
	}
	return FormatLong(*a.DateOfBirth)
}

func (a Author) DateOfDeathFormatted() string {
	if a.DateOfDeath == nil {
		return ""
	}
	return FormatLong(*a.DateOfDeath)
}

func (a Author) DateOfBirthForm() string { return formatOptional(a.DateOfBirth) }
func (a Author) DateOfDeathForm() string { return formatOptional(a.DateOfDeath) }

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatForm(*t)
}
