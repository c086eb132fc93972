package domain

type TemplateKind string

const (
	TemplateKindNormal TemplateKind = "normal"
	TemplateKindIconic TemplateKind = "iconic"
)

// ParseTemplateKind maps a stored type tag onto the closed set of kinds.
// Anything that is not "iconic" is treated as a normal template.
func ParseTemplateKind(tag string) TemplateKind {
	if tag == string(TemplateKindIconic) {
		return TemplateKindIconic
	}
	return TemplateKindNormal
}

// WeeklyQuantities holds the ordered quantity per weekday, Monday first.
type WeeklyQuantities [DaysPerWeek]int

// ProductRef points a template at what it orders. Normal templates use
// ProductID directly; iconic templates go through MenuID/SlotID and fall back
// to ProductID.
type ProductRef struct {
	ProductID string `json:"product_id,omitempty"`
	MenuID    string `json:"menu_id,omitempty"`
	SlotID    string `json:"slot_id,omitempty"`
}

type DeadlineRule struct {
	DaysBefore       int        `json:"days_before"`
	Hour             int        `json:"hour"`
	Minute           int        `json:"minute"`
	ExcludedWeekdays WeekdaySet `json:"excluded_weekdays"`
}

type OrderTemplate struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Kind             TemplateKind     `json:"kind"`
	WeeklyQuantities WeeklyQuantities `json:"weekly_quantities"`
	ProductRef       ProductRef       `json:"product_ref"`
	Deadline         *DeadlineRule    `json:"deadline,omitempty"`
}

// DeadlineFromLegacy decodes the stored [daysBefore, hour, minute?] array
// together with the Sunday-first list of days that do not count. An empty
// array means the template has no deadline.
func DeadlineFromLegacy(deadline []int, deadDaysJS []int) *DeadlineRule {
	if len(deadline) == 0 {
		return nil
	}
	rule := &DeadlineRule{
		DaysBefore:       deadline[0],
		ExcludedWeekdays: WeekdaySetFromJS(deadDaysJS),
	}
	if len(deadline) > 1 {
		rule.Hour = deadline[1]
	}
	if len(deadline) > 2 {
		rule.Minute = deadline[2]
	}
	return rule
}

// Legacy is the inverse of DeadlineFromLegacy.
func (r *DeadlineRule) Legacy() (deadline []int, deadDaysJS []int) {
	if r == nil {
		return nil, nil
	}
	return []int{r.DaysBefore, r.Hour, r.Minute}, r.ExcludedWeekdays.JS()
}
