// Package catalog reads menus and product sets from PostgreSQL.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/joao-fontenele/orderflow-cyclic/internal/documents"
	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) FindMenu(ctx context.Context, id string) (*domain.DynamicMenu, error) {
	var days []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT days
		FROM menus
		WHERE id = $1
	`, id).Scan(&days)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var doc documents.Menu
	if err := json.Unmarshal(days, &doc.Days); err != nil {
		return nil, fmt.Errorf("decode days of menu %s: %w", id, err)
	}

	menu := doc.ToDomain(id)
	return &menu, nil
}

func (r *CatalogRepository) FindProductSet(ctx context.Context, id string) (*domain.ProductSet, error) {
	var products []string
	err := r.db.QueryRowContext(ctx, `
		SELECT products
		FROM product_sets
		WHERE id = $1
	`, id).Scan(pq.Array(&products))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &domain.ProductSet{ID: id, Products: products}, nil
}

func (r *CatalogRepository) SaveMenu(ctx context.Context, menu domain.DynamicMenu) error {
	days, err := json.Marshal(documents.MenuFromDomain(menu).Days)
	if err != nil {
		return fmt.Errorf("encode days of menu %s: %w", menu.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO menus (id, days)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET days = EXCLUDED.days
	`, menu.ID, days)
	return err
}

func (r *CatalogRepository) SaveProductSet(ctx context.Context, set domain.ProductSet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_sets (id, products)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET products = EXCLUDED.products
	`, set.ID, pq.Array(set.Products))
	return err
}
