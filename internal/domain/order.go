package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	ProductID  string `json:"product_id" bson:"productId" firestore:"productId"`
	Quantity   int    `json:"quantity" bson:"quantity" firestore:"quantity"`
	TemplateID string `json:"template_id" bson:"templateId" firestore:"templateId"`
}

// OrderKey identifies the single order a user has on a calendar date.
type OrderKey struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

// OrderDraft is the in-memory accumulation of every template contributing
// to one OrderKey.
type OrderDraft struct {
	OrderKey
	Items     []OrderItem `json:"items"`
	EditUntil *time.Time  `json:"edit_until,omitempty"`
}

// Order is the persisted record for an OrderKey.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Date      string      `json:"date"`
	Items     []OrderItem `json:"items"`
	Status    OrderStatus `json:"status"`
	EditUntil *time.Time  `json:"edit_until,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderPatch carries what a reconciliation pass writes for one key. Status
// is written on creation and, when ResetStatus is set, on every update too.
type OrderPatch struct {
	Items       []OrderItem
	EditUntil   *time.Time
	Status      OrderStatus
	ResetStatus bool
	Now         time.Time
}
