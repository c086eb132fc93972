package schedule

import (
	"fmt"
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// MaxDaysBefore bounds how far back a cutoff may be counted.
const MaxDaysBefore = 366

// ValidateRule checks that rule can be evaluated. A nil rule is valid.
func ValidateRule(rule *domain.DeadlineRule) error {
	switch {
	case rule == nil:
		return nil
	case rule.DaysBefore < 0:
		return &domain.InvalidRuleError{Reason: fmt.Sprintf("days before %d is negative", rule.DaysBefore)}
	case rule.DaysBefore > MaxDaysBefore:
		return &domain.InvalidRuleError{Reason: fmt.Sprintf("days before %d exceeds %d", rule.DaysBefore, MaxDaysBefore)}
	case rule.Hour < 0 || rule.Hour > 23:
		return &domain.InvalidRuleError{Reason: fmt.Sprintf("hour %d out of range", rule.Hour)}
	case rule.Minute < 0 || rule.Minute > 59:
		return &domain.InvalidRuleError{Reason: fmt.Sprintf("minute %d out of range", rule.Minute)}
	case rule.ExcludedWeekdays.Full():
		return &domain.InvalidRuleError{Reason: "every weekday is excluded"}
	}
	return nil
}

// EditUntil returns the cutoff after which the order tpl produces for
// orderDate can no longer be edited, or nil when tpl has no deadline.
//
// Starting at orderDate it steps back one calendar day at a time and counts
// only days whose weekday is not excluded, stopping after DaysBefore counted
// days. The cutoff is that day at Hour:Minute in loc.
func EditUntil(tpl domain.OrderTemplate, orderDate time.Time, loc *time.Location) (*time.Time, error) {
	rule := tpl.Deadline
	if rule == nil {
		return nil, nil
	}
	if err := ValidateRule(rule); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	day := time.Date(orderDate.Year(), orderDate.Month(), orderDate.Day(), 0, 0, 0, 0, time.UTC)
	for remaining := rule.DaysBefore; remaining > 0; {
		day = day.AddDate(0, 0, -1)
		if !rule.ExcludedWeekdays.Has(domain.WeekdayOf(day)) {
			remaining--
		}
	}

	cutoff := time.Date(day.Year(), day.Month(), day.Day(), rule.Hour, rule.Minute, 0, 0, loc)
	return &cutoff, nil
}
