package domain

import (
	"testing"
	"time"
)

func TestWeekdayFromJS(t *testing.T) {
	tests := []struct {
		js   int
		want Weekday
	}{
		{0, Sunday},
		{1, Monday},
		{2, Tuesday},
		{5, Friday},
		{6, Saturday},
		{7, Sunday},
		{-1, Saturday},
	}

	for _, tt := range tests {
		if got := WeekdayFromJS(tt.js); got != tt.want {
			t.Errorf("WeekdayFromJS(%d): expected %s, got %s", tt.js, tt.want, got)
		}
	}
}

func TestWeekday_JSRoundTrip(t *testing.T) {
	for d := Monday; d <= Sunday; d++ {
		if got := WeekdayFromJS(d.JS()); got != d {
			t.Errorf("expected %s, got %s", d, got)
		}
		if d.String() != time.Weekday(d.JS()).String() {
			t.Errorf("expected %s to match time.Weekday %s", d, time.Weekday(d.JS()))
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayOf(monday.AddDate(0, 0, i)); got != Weekday(i) {
			t.Errorf("expected %s, got %s", Weekday(i), got)
		}
	}
}

func TestWeekdayKeys(t *testing.T) {
	for d := Monday; d <= Sunday; d++ {
		parsed, ok := ParseWeekdayKey(d.Key())
		if !ok || parsed != d {
			t.Errorf("expected %q to parse to %s", d.Key(), d)
		}
	}
	if _, ok := ParseWeekdayKey("funday"); ok {
		t.Error("expected unknown key to fail")
	}
}

func TestWeekdaySet(t *testing.T) {
	s := WeekdaySetFromJS([]int{0, 6})
	if !s.Has(Saturday) || !s.Has(Sunday) {
		t.Fatalf("expected weekend, got %v", s.Days())
	}
	if s.Has(Monday) {
		t.Error("monday should not be in the set")
	}
	if s.Full() {
		t.Error("weekend is not a full week")
	}

	js := s.JS()
	if len(js) != 2 || js[0] != 6 || js[1] != 0 {
		t.Errorf("expected [6 0], got %v", js)
	}

	full := NewWeekdaySet(Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday)
	if !full.Full() {
		t.Error("expected full week")
	}
	if s.With(Weekday(9)) != s {
		t.Error("invalid weekday must be ignored")
	}
}

func TestDeadlineFromLegacy(t *testing.T) {
	if DeadlineFromLegacy(nil, []int{0}) != nil {
		t.Error("empty deadline array means no rule")
	}

	rule := DeadlineFromLegacy([]int{2, 18}, []int{0})
	if rule.DaysBefore != 2 || rule.Hour != 18 || rule.Minute != 0 {
		t.Errorf("unexpected rule: %+v", rule)
	}
	if !rule.ExcludedWeekdays.Has(Sunday) {
		t.Error("expected sunday excluded")
	}

	deadline, dead := rule.Legacy()
	if len(deadline) != 3 || deadline[0] != 2 || deadline[1] != 18 || deadline[2] != 0 {
		t.Errorf("unexpected legacy deadline: %v", deadline)
	}
	if len(dead) != 1 || dead[0] != 0 {
		t.Errorf("unexpected legacy dead days: %v", dead)
	}
}

func TestProductSetMembers(t *testing.T) {
	set := ProductSet{ID: "PS1", Products: []string{"A", "B", "A", "", "C"}}
	got := set.Members()
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
