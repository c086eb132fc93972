package domain

// DynamicMenu lists, per calendar date, what a menu slot points at.
type DynamicMenu struct {
	ID   string    `json:"id"`
	Days []MenuDay `json:"days"`
}

// MenuDay is one date of a dynamic menu. ProductIDs and ProductSetIDs, when
// present, restrict which products may be ordered on that date.
type MenuDay struct {
	Date          string     `json:"date"`
	Slots         []SlotLink `json:"slots"`
	ProductIDs    []string   `json:"product_ids,omitempty"`
	ProductSetIDs []string   `json:"product_set_ids,omitempty"`
}

// SlotLink references either a product or a product set, or neither.
type SlotLink struct {
	SlotID       string `json:"slot_id"`
	ProductID    string `json:"product_id,omitempty"`
	ProductSetID string `json:"product_set_id,omitempty"`
}

type ProductSet struct {
	ID       string   `json:"id"`
	Products []string `json:"products"`
}

// Day returns the day for date, or nil.
func (m *DynamicMenu) Day(date string) *MenuDay {
	for i := range m.Days {
		if m.Days[i].Date == date {
			return &m.Days[i]
		}
	}
	return nil
}

// Slot returns the link for slotID, or nil.
func (d *MenuDay) Slot(slotID string) *SlotLink {
	for i := range d.Slots {
		if d.Slots[i].SlotID == slotID {
			return &d.Slots[i]
		}
	}
	return nil
}

// Members returns the set's products in stored order with duplicates and
// empty ids dropped.
func (s *ProductSet) Members() []string {
	seen := make(map[string]struct{}, len(s.Products))
	members := make([]string, 0, len(s.Products))
	for _, id := range s.Products {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	return members
}
