// Package schedule evaluates the calendar side of order templates: how much
// a template orders on a date and until when that order may be edited.
package schedule

import (
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// Quantity returns the quantity tpl orders on date. Non-positive values count
// as no order.
func Quantity(tpl domain.OrderTemplate, date time.Time) int {
	return QuantityOn(tpl.WeeklyQuantities, domain.WeekdayOf(date))
}

func QuantityOn(q domain.WeeklyQuantities, day domain.Weekday) int {
	if !day.Valid() {
		return 0
	}
	return max(q[day], 0)
}
