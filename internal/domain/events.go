package domain

import "time"

type OrderGeneratedEvent struct {
	EventID   string      `json:"event_id"`
	UserID    string      `json:"user_id"`
	Date      string      `json:"date"`
	Items     []OrderItem `json:"items"`
	EditUntil *time.Time  `json:"edit_until,omitempty"`
	Created   bool        `json:"created"`
	Timestamp time.Time   `json:"timestamp"`
}
