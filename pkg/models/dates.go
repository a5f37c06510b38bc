package models

import (
	"strconv"
	"time"
)

const formLayout = "2006-01-02"

// FormatLong renders a date as "5th March 1990".
func FormatLong(t time.Time) string {
	return ordinal(t.Day()) + " " + t.Format("January 2006")
}

// FormatForm renders a date the way date inputs expect it.
func FormatForm(t time.Time) string {
	return t.Format(formLayout)
}

func ordinal(day int) string {
	suffix := "th"
	switch day % 100 {
	case 11, 12, 13:
	default:
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(day) + suffix
}

func (bi BookInstance) DueBackFormatted() string { return FormatLong(bi.DueBack) }
func (bi BookInstance) DueBackForm() string      { return FormatForm(bi.DueBack) }
