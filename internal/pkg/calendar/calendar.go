// Package calendar computes the Monday-to-Friday week shown on the booking
// grid and holds the fixed catalog of bookable time bands.
package calendar

import (
	"fmt"
	"slices"
	"time"
)

// WeekDays is the number of bookable days in a displayed week.
const WeekDays = 5

// DateLayout is the wire format of a calendar day.
const DateLayout = "2006-01-02"

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var timeSlots = []string{
	"08:00 - 09:00",
	"09:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	"13:00 - 14:00",
	"14:00 - 15:00",
	"15:00 - 16:00",
	"16:00 - 17:00",
	"17:00 - 18:00",
	"18:00 - 19:00",
	"19:00 - 20:00",
	"20:00 - 21:00",
	"21:00 - 22:00",
}

// Week is the set of weekdays displayed for one week offset.
type Week struct {
	Offset int                 `json:"offset"`
	Days   [WeekDays]time.Time `json:"days" swaggertype:"array,string"`
	Label  string              `json:"label"`
}

// First returns the Monday of the week.
func (w Week) First() time.Time { return w.Days[0] }

// Last returns the Friday of the week.
func (w Week) Last() time.Time { return w.Days[WeekDays-1] }

// Contains reports whether day falls on one of the week's days.
func (w Week) Contains(day time.Time) bool {
	for _, d := range w.Days {
		if SameDay(d, day) {
			return true
		}
	}
	return false
}

// WeekOf returns Monday..Friday of the week that is offset weeks away from the
// week containing now. Sunday belongs to the week that started six days earlier.
func WeekOf(now time.Time, offset int) Week {
	today := Day(now)
	back := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -back+7*offset)

	w := Week{Offset: offset}
	for i := range WeekDays {
		w.Days[i] = monday.AddDate(0, 0, i)
	}
	w.Label = fmt.Sprintf("%d de %s - %d de %s",
		w.First().Day(), monthNames[w.First().Month()-1],
		w.Last().Day(), monthNames[w.Last().Month()-1],
	)
	return w
}

// Day truncates t to its calendar day. The result is midnight UTC of the
// year/month/day t shows in its own location, so days compare and persist
// independent of time zone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares two instants by year, month and day only.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDay parses a YYYY-MM-DD day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// TimeSlots returns the ordered catalog of bookable bands.
func TimeSlots() []string {
	return slices.Clone(timeSlots)
}

// IsTimeSlot reports whether label is one of the catalog bands.
func IsTimeSlot(label string) bool {
	return slices.Contains(timeSlots, label)
}
