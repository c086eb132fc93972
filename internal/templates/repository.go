// Package templates reads recurring order templates from PostgreSQL.
package templates

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/joao-fontenele/orderflow-cyclic/internal/documents"
	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindAll returns every template ordered by id. Deadline columns keep the
// legacy array layout and are decoded through documents.Template.
func (r *TemplateRepository) FindAll(ctx context.Context) ([]domain.OrderTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, product_id, menu_id, slot_id,
			mon, tue, wed, thu, fri, sat, sun, deadline, dead_days
		FROM order_templates
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	templates := []domain.OrderTemplate{}
	for rows.Next() {
		var (
			id       string
			doc      documents.Template
			deadline []int64
			deadDays []int64
		)
		if err := rows.Scan(&id, &doc.UserID, &doc.Type, &doc.ProductID, &doc.MenuID, &doc.SlotID,
			&doc.Mon, &doc.Tue, &doc.Wed, &doc.Thu, &doc.Fri, &doc.Sat, &doc.Sun,
			pq.Array(&deadline), pq.Array(&deadDays)); err != nil {
			return nil, err
		}
		doc.Deadline = ints(deadline)
		doc.DeadDays = ints(deadDays)
		templates = append(templates, doc.ToDomain(id))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *TemplateRepository) Save(ctx context.Context, tpl domain.OrderTemplate) error {
	doc := documents.TemplateFromDomain(tpl)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_templates (id, user_id, type, product_id, menu_id, slot_id,
			mon, tue, wed, thu, fri, sat, sun, deadline, dead_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id, type = EXCLUDED.type,
			product_id = EXCLUDED.product_id, menu_id = EXCLUDED.menu_id, slot_id = EXCLUDED.slot_id,
			mon = EXCLUDED.mon, tue = EXCLUDED.tue, wed = EXCLUDED.wed, thu = EXCLUDED.thu,
			fri = EXCLUDED.fri, sat = EXCLUDED.sat, sun = EXCLUDED.sun,
			deadline = EXCLUDED.deadline, dead_days = EXCLUDED.dead_days
	`, tpl.ID, doc.UserID, doc.Type, doc.ProductID, doc.MenuID, doc.SlotID,
		doc.Mon, doc.Tue, doc.Wed, doc.Thu, doc.Fri, doc.Sat, doc.Sun,
		pq.Array(int64s(doc.Deadline)), pq.Array(int64s(doc.DeadDays)))
	return err
}

func ints(in []int64) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func int64s(in []int) []int64 {
	if in == nil {
		return nil
	}
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
