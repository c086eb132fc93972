// Package fsstore keeps templates, catalog documents and generated orders in
// Cloud Firestore.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joao-fontenele/orderflow-cyclic/internal/documents"
	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

// OrderDocID is the document id of the order for key. One document per key
// is what keeps upserts idempotent.
func OrderDocID(key domain.OrderKey) string {
	return key.UserID + "_" + key.Date
}

func (s *Store) FindAll(ctx context.Context) ([]domain.OrderTemplate, error) {
	iter := s.client.Collection(documents.TemplatesCollection).Documents(ctx)
	defer iter.Stop()

	templates := []domain.OrderTemplate{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fsstore: list templates: %w", err)
		}

		var doc documents.Template
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("fsstore: decode template %s: %w", snap.Ref.ID, err)
		}
		templates = append(templates, doc.ToDomain(snap.Ref.ID))
	}

	return templates, nil
}

func (s *Store) FindMenu(ctx context.Context, id string) (*domain.DynamicMenu, error) {
	var doc documents.Menu
	found, err := s.get(ctx, documents.MenusCollection, id, &doc)
	if err != nil || !found {
		return nil, err
	}

	menu := doc.ToDomain(id)
	return &menu, nil
}

func (s *Store) FindProductSet(ctx context.Context, id string) (*domain.ProductSet, error) {
	var doc documents.ProductSet
	found, err := s.get(ctx, documents.ProductSetsCollection, id, &doc)
	if err != nil || !found {
		return nil, err
	}

	set := doc.ToDomain(id)
	return &set, nil
}

// UpsertByKey reads and writes the order document in one transaction so
// createdAt is only ever set by the write that creates it.
func (s *Store) UpsertByKey(ctx context.Context, key domain.OrderKey, patch domain.OrderPatch) (bool, error) {
	ref, err := s.doc(documents.OrdersCollection, OrderDocID(key))
	if err != nil {
		return false, err
	}

	var created bool
	err = s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if snap == nil || !snap.Exists() {
			created = true
			return tx.Set(ref, documents.Order{
				UserID:    key.UserID,
				Date:      key.Date,
				Items:     patch.Items,
				Status:    string(patch.Status),
				EditUntil: patch.EditUntil,
				Source:    documents.SourceCyclic,
				CreatedAt: patch.Now,
				UpdatedAt: patch.Now,
			})
		}

		created = false
		updates := []firestore.Update{
			{Path: "items", Value: patch.Items},
			{Path: "editUntil", Value: patch.EditUntil},
			{Path: "updatedAt", Value: patch.Now},
		}
		if patch.ResetStatus {
			updates = append(updates, firestore.Update{Path: "status", Value: string(patch.Status)})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return false, fmt.Errorf("fsstore: upsert order %s: %w", ref.ID, err)
	}

	return created, nil
}

func (s *Store) GetByKey(ctx context.Context, key domain.OrderKey) (*domain.Order, error) {
	id := OrderDocID(key)
	var doc documents.Order
	found, err := s.get(ctx, documents.OrdersCollection, id, &doc)
	if err != nil || !found {
		return nil, err
	}

	order := doc.ToDomain(id)
	return &order, nil
}

func (s *Store) ListByDate(ctx context.Context, date string) ([]domain.Order, error) {
	iter := s.client.Collection(documents.OrdersCollection).Query.WhereEntity(firestore.PropertyFilter{
		Path:     "date",
		Operator: "==",
		Value:    date,
	}).Documents(ctx)
	defer iter.Stop()

	orders := []domain.Order{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fsstore: list orders: %w", err)
		}

		var doc documents.Order
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("fsstore: decode order %s: %w", snap.Ref.ID, err)
		}
		orders = append(orders, doc.ToDomain(snap.Ref.ID))
	}

	slices.SortFunc(orders, func(a, b domain.Order) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return orders, nil
}

func (s *Store) get(ctx context.Context, collection, id string, dst any) (bool, error) {
	ref, err := s.doc(collection, id)
	if err != nil {
		return false, err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("fsstore: get %s/%s: %w", collection, id, err)
	}

	if err := snap.DataTo(dst); err != nil {
		return false, fmt.Errorf("fsstore: decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// doc returns the reference for id, rejecting ids Firestore cannot address.
func (s *Store) doc(collection, id string) (*firestore.DocumentRef, error) {
	if !ValidDocID(id) {
		return nil, fmt.Errorf("%s id %q: %w", collection, id, domain.ErrInvalidIdentifier)
	}
	return s.client.Collection(collection).Doc(id), nil
}

// ValidDocID reports whether id can name a Firestore document.
func ValidDocID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.Contains(id, "/") &&
		!(strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"))
}
