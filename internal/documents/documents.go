// Package documents defines the document layout shared by the document
// stores (MongoDB, Firestore) and YAML fixtures. Field names follow the
// collections written by the ordering frontend; weekday numbers in deadDays
// are Sunday-first and are converted here and nowhere else.
package documents

import (
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

const (
	TemplatesCollection   = "order_templates"
	MenusCollection       = "menus"
	ProductSetsCollection = "product_sets"
	OrdersCollection      = "orders"
)

// SourceCyclic marks orders written by the generator.
const SourceCyclic = "cyclic"

type Template struct {
	UserID    string `bson:"uid" firestore:"uid" yaml:"uid"`
	Type      string `bson:"type,omitempty" firestore:"type" yaml:"type,omitempty"`
	ProductID string `bson:"pid,omitempty" firestore:"pid" yaml:"pid,omitempty"`
	MenuID    string `bson:"idd,omitempty" firestore:"idd" yaml:"idd,omitempty"`
	SlotID    string `bson:"slotId,omitempty" firestore:"slotId" yaml:"slotId,omitempty"`

	Mon int `bson:"mon" firestore:"mon" yaml:"mon,omitempty"`
	Tue int `bson:"tue" firestore:"tue" yaml:"tue,omitempty"`
	Wed int `bson:"wed" firestore:"wed" yaml:"wed,omitempty"`
	Thu int `bson:"thu" firestore:"thu" yaml:"thu,omitempty"`
	Fri int `bson:"fri" firestore:"fri" yaml:"fri,omitempty"`
	Sat int `bson:"sat" firestore:"sat" yaml:"sat,omitempty"`
	Sun int `bson:"sun" firestore:"sun" yaml:"sun,omitempty"`

	// Deadline is [daysBefore, hour, minute?].
	Deadline []int `bson:"deadline,omitempty" firestore:"deadline" yaml:"deadline,omitempty"`
	DeadDays []int `bson:"deadDays,omitempty" firestore:"deadDays" yaml:"deadDays,omitempty"`
}

func (d Template) ToDomain(id string) domain.OrderTemplate {
	return domain.OrderTemplate{
		ID:               id,
		UserID:           d.UserID,
		Kind:             domain.ParseTemplateKind(d.Type),
		WeeklyQuantities: domain.WeeklyQuantities{d.Mon, d.Tue, d.Wed, d.Thu, d.Fri, d.Sat, d.Sun},
		ProductRef: domain.ProductRef{
			ProductID: d.ProductID,
			MenuID:    d.MenuID,
			SlotID:    d.SlotID,
		},
		Deadline: domain.DeadlineFromLegacy(d.Deadline, d.DeadDays),
	}
}

func TemplateFromDomain(t domain.OrderTemplate) Template {
	q := t.WeeklyQuantities
	deadline, deadDays := t.Deadline.Legacy()
	return Template{
		UserID:    t.UserID,
		Type:      string(t.Kind),
		ProductID: t.ProductRef.ProductID,
		MenuID:    t.ProductRef.MenuID,
		SlotID:    t.ProductRef.SlotID,
		Mon:       q[domain.Monday],
		Tue:       q[domain.Tuesday],
		Wed:       q[domain.Wednesday],
		Thu:       q[domain.Thursday],
		Fri:       q[domain.Friday],
		Sat:       q[domain.Saturday],
		Sun:       q[domain.Sunday],
		Deadline:  deadline,
		DeadDays:  deadDays,
	}
}

type Slot struct {
	SlotID       string `json:"slotId" bson:"slotId" firestore:"slotId" yaml:"slotId"`
	ProductID    string `json:"productId,omitempty" bson:"productId,omitempty" firestore:"productId" yaml:"productId,omitempty"`
	ProductSetID string `json:"productSetId,omitempty" bson:"productSetId,omitempty" firestore:"productSetId" yaml:"productSetId,omitempty"`
}

type MenuDay struct {
	Date        string   `json:"date" bson:"date" firestore:"date" yaml:"date"`
	Slots       []Slot   `json:"slots" bson:"slots" firestore:"slots" yaml:"slots"`
	Products    []string `json:"products,omitempty" bson:"products,omitempty" firestore:"products" yaml:"products,omitempty"`
	ProductSets []string `json:"productSets,omitempty" bson:"productSets,omitempty" firestore:"productSets" yaml:"productSets,omitempty"`
}

type Menu struct {
	Days []MenuDay `bson:"days" firestore:"days" yaml:"days"`
}

func (d Menu) ToDomain(id string) domain.DynamicMenu {
	menu := domain.DynamicMenu{ID: id, Days: make([]domain.MenuDay, len(d.Days))}
	for i, day := range d.Days {
		slots := make([]domain.SlotLink, len(day.Slots))
		for j, s := range day.Slots {
			slots[j] = domain.SlotLink{SlotID: s.SlotID, ProductID: s.ProductID, ProductSetID: s.ProductSetID}
		}
		menu.Days[i] = domain.MenuDay{
			Date:          day.Date,
			Slots:         slots,
			ProductIDs:    day.Products,
			ProductSetIDs: day.ProductSets,
		}
	}
	return menu
}

func MenuFromDomain(m domain.DynamicMenu) Menu {
	doc := Menu{Days: make([]MenuDay, len(m.Days))}
	for i, day := range m.Days {
		slots := make([]Slot, len(day.Slots))
		for j, s := range day.Slots {
			slots[j] = Slot{SlotID: s.SlotID, ProductID: s.ProductID, ProductSetID: s.ProductSetID}
		}
		doc.Days[i] = MenuDay{
			Date:        day.Date,
			Slots:       slots,
			Products:    day.ProductIDs,
			ProductSets: day.ProductSetIDs,
		}
	}
	return doc
}

type ProductSet struct {
	Products []string `bson:"products" firestore:"products" yaml:"products"`
}

func (d ProductSet) ToDomain(id string) domain.ProductSet {
	return domain.ProductSet{ID: id, Products: d.Products}
}

type Order struct {
	UserID    string             `bson:"uid" firestore:"uid"`
	Date      string             `bson:"date" firestore:"date"`
	Items     []domain.OrderItem `bson:"items" firestore:"items"`
	Status    string             `bson:"status" firestore:"status"`
	EditUntil *time.Time         `bson:"editUntil,omitempty" firestore:"editUntil"`
	Source    string             `bson:"source" firestore:"source"`
	CreatedAt time.Time          `bson:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" firestore:"updatedAt"`
}

func (d Order) ToDomain(id string) domain.Order {
	return domain.Order{
		ID:        id,
		UserID:    d.UserID,
		Date:      d.Date,
		Items:     d.Items,
		Status:    domain.OrderStatus(d.Status),
		EditUntil: d.EditUntil,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
