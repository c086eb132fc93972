package domain

import (
	"fmt"
	"time"
)

// Weekday numbers days Monday=0 through Sunday=6. It is the only weekday
// numbering used past the storage boundary.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const DaysPerWeek = 7

var weekdayKeys = [DaysPerWeek]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// WeekdayOf returns the weekday of t in t's location.
func WeekdayOf(t time.Time) Weekday {
	return WeekdayFromJS(int(t.Weekday()))
}

// WeekdayFromJS converts the Sunday-first numbering (0=Sunday .. 6=Saturday)
// used by time.Weekday and by JavaScript clients writing template documents.
func WeekdayFromJS(day int) Weekday {
	return Weekday(((day%DaysPerWeek)+DaysPerWeek+6) % DaysPerWeek)
}

// JS is the inverse of WeekdayFromJS.
func (d Weekday) JS() int {
	return (int(d) + 1) % DaysPerWeek
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Key is the short field name used by template documents ("mon".."sun").
func (d Weekday) Key() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayKeys[d]
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(d.JS()).String()
}

// ParseWeekdayKey is the inverse of Key.
func ParseWeekdayKey(key string) (Weekday, bool) {
	for i, k := range weekdayKeys {
		if k == key {
			return Weekday(i), true
		}
	}
	return 0, false
}

// WeekdaySet is a bitmask of weekdays.
type WeekdaySet uint8

const allWeekdays WeekdaySet = 1<<DaysPerWeek - 1

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// WeekdaySetFromJS builds a set from Sunday-first day numbers.
func WeekdaySetFromJS(days []int) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(WeekdayFromJS(d))
	}
	return s
}

func (s WeekdaySet) With(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d Weekday) bool {
	return d.Valid() && s&(1<<uint(d)) != 0
}

// Full reports whether every day of the week is in the set.
func (s WeekdaySet) Full() bool {
	return s&allWeekdays == allWeekdays
}

// Days returns the members in Monday-first order.
func (s WeekdaySet) Days() []Weekday {
	var days []Weekday
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// JS returns the members as Sunday-first day numbers, for storage.
func (s WeekdaySet) JS() []int {
	days := s.Days()
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = d.JS()
	}
	return out
}
