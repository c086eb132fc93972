// Package mongostore reads templates and catalog documents from MongoDB and
// upserts generated orders into the orders collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joao-fontenele/orderflow-cyclic/internal/documents"
	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type templateDoc struct {
	ID                 primitive.ObjectID `bson:"_id"`
	documents.Template `bson:",inline"`
}

type menuDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	documents.Menu `bson:",inline"`
}

type productSetDoc struct {
	ID                   primitive.ObjectID `bson:"_id"`
	documents.ProductSet `bson:",inline"`
}

type orderDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	documents.Order `bson:",inline"`
}

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Connect dials uri and returns a Store on database name together with a
// function that disconnects the client.
func Connect(ctx context.Context, uri, name string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client.Database(name)), client.Disconnect, nil
}

// EnsureIndexes creates the unique (uid, date) index that makes order
// upserts safe against concurrent runs.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(documents.OrdersCollection).Indexes().CreateOne(ctx, orderIndex())
	return err
}

// orderIndex only covers documents the generator wrote. Older orders in the
// same collection may lack uid or date and would otherwise collide on nulls.
func orderIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("uid_date").
			SetPartialFilterExpression(bson.M{"source": documents.SourceCyclic}),
	}
}

func orderFilter(key domain.OrderKey) bson.M {
	return bson.M{"uid": key.UserID, "date": key.Date, "source": documents.SourceCyclic}
}

func (s *Store) FindAll(ctx context.Context) ([]domain.OrderTemplate, error) {
	cursor, err := s.db.Collection(documents.TemplatesCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	templates := []domain.OrderTemplate{}
	for cursor.Next(ctx) {
		var doc templateDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		templates = append(templates, doc.ToDomain(doc.ID.Hex()))
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (s *Store) FindMenu(ctx context.Context, id string) (*domain.DynamicMenu, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc menuDoc
	err = s.db.Collection(documents.MenusCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	menu := doc.ToDomain(id)
	return &menu, nil
}

func (s *Store) FindProductSet(ctx context.Context, id string) (*domain.ProductSet, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc productSetDoc
	err = s.db.Collection(documents.ProductSetsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	set := doc.ToDomain(id)
	return &set, nil
}

// UpsertByKey relies on the filter fields being copied into inserted
// documents, so uid, date and source only appear in the filter.
func (s *Store) UpsertByKey(ctx context.Context, key domain.OrderKey, patch domain.OrderPatch) (bool, error) {
	set := bson.M{
		"items":     patch.Items,
		"editUntil": patch.EditUntil,
		"updatedAt": patch.Now,
	}
	setOnInsert := bson.M{
		"createdAt": patch.Now,
	}
	if patch.ResetStatus {
		set["status"] = patch.Status
	} else {
		setOnInsert["status"] = patch.Status
	}

	res, err := s.db.Collection(documents.OrdersCollection).UpdateOne(ctx,
		orderFilter(key),
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}

	return res.UpsertedCount > 0, nil
}

func (s *Store) GetByKey(ctx context.Context, key domain.OrderKey) (*domain.Order, error) {
	var doc orderDoc
	err := s.db.Collection(documents.OrdersCollection).
		FindOne(ctx, orderFilter(key)).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	order := doc.ToDomain(doc.ID.Hex())
	return &order, nil
}

func (s *Store) ListByDate(ctx context.Context, date string) ([]domain.Order, error) {
	cursor, err := s.db.Collection(documents.OrdersCollection).Find(ctx,
		bson.M{"date": date, "source": documents.SourceCyclic},
		options.Find().SetSort(bson.D{{Key: "uid", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	orders := []domain.Order{}
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, doc.ToDomain(doc.ID.Hex()))
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// Seed inserts templates, menus and product sets, keeping their ids. Ids
// must be 24-character hex strings.
func (s *Store) Seed(ctx context.Context, templates []domain.OrderTemplate, menus []domain.DynamicMenu, sets []domain.ProductSet) error {
	for _, tpl := range templates {
		oid, err := objectID(tpl.ID)
		if err != nil {
			return err
		}
		doc := templateDoc{ID: oid, Template: documents.TemplateFromDomain(tpl)}
		if _, err := s.db.Collection(documents.TemplatesCollection).InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("insert template %s: %w", tpl.ID, err)
		}
	}
	for _, menu := range menus {
		oid, err := objectID(menu.ID)
		if err != nil {
			return err
		}
		doc := menuDoc{ID: oid, Menu: documents.MenuFromDomain(menu)}
		if _, err := s.db.Collection(documents.MenusCollection).InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("insert menu %s: %w", menu.ID, err)
		}
	}
	for _, set := range sets {
		oid, err := objectID(set.ID)
		if err != nil {
			return err
		}
		doc := productSetDoc{ID: oid, ProductSet: documents.ProductSet{Products: set.Products}}
		if _, err := s.db.Collection(documents.ProductSetsCollection).InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("insert product set %s: %w", set.ID, err)
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%q: %w", id, domain.ErrInvalidIdentifier)
	}
	return oid, nil
}
