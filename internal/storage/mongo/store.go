// Package mongo stores catalog records in MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
)

// document is the stored form of a record.
type document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Instructions string             `bson:"instructions"`
	Ingredients  []string           `bson:"ingredients"`
}

func (d *document) record() *domain.Record {
	ingredients := domain.Ingredients(d.Ingredients)
	if ingredients == nil {
		ingredients = domain.Ingredients{}
	}
	return &domain.Record{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Instructions: d.Instructions,
		Ingredients:  ingredients,
	}
}

// fieldsDoc builds the $set body of a full replace.
func fieldsDoc(f domain.Fields) bson.M {
	ingredients := []string(f.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	return bson.M{
		"title":        f.Title,
		"description":  f.Description,
		"instructions": f.Instructions,
		"ingredients":  ingredients,
	}
}

// listProjection limits list reads to the editable fields.
var listProjection = bson.D{
	{Key: "title", Value: 1},
	{Key: "description", Value: 1},
	{Key: "instructions", Value: 1},
	{Key: "ingredients", Value: 1},
}

// Backend owns the client shared by every collection.
type Backend struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri and pings the server before returning.
func New(ctx context.Context, uri, database string) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &Backend{client: client, db: client.Database(database)}, nil
}

// Open returns a store bound to kind's collection.
func (b *Backend) Open(ctx context.Context, kind domain.Kind) (storage.Storage, error) {
	return &Store{coll: b.db.Collection(kind.Collection), name: kind.Collection}, nil
}

func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// Store implements storage.Storage on one MongoDB collection.
type Store struct {
	coll *mongo.Collection
	name string
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, storage.Internal(s.name, "count records", err)
	}
	return n, nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Record, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetProjection(listProjection))
	if err != nil {
		return nil, storage.Internal(s.name, "list records", err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Internal(s.name, "decode records", err)
	}

	out := make([]*domain.Record, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].record())
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var doc document
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.Internal(s.name, "get record", err)
	}
	return doc.record(), nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Record, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	result := make(map[string]*domain.Record, len(oids))
	if len(oids) == 0 {
		return result, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, storage.Internal(s.name, "get records", err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Internal(s.name, "decode records", err)
	}
	for i := range docs {
		r := docs[i].record()
		result[r.ID] = r
	}
	return result, nil
}

func (s *Store) Create(ctx context.Context, fields domain.Fields) (*domain.Record, error) {
	doc := document{
		Title:        fields.Title,
		Description:  fields.Description,
		Instructions: fields.Instructions,
		Ingredients:  fields.Ingredients,
	}
	if doc.Ingredients == nil {
		doc.Ingredients = []string{}
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, storage.Internal(s.name, "insert record", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, storage.Internal(s.name, "insert record",
			fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	doc.ID = oid
	return doc.record(), nil
}

func (s *Store) Update(ctx context.Context, id string, fields domain.Fields) (*domain.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc document
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fieldsDoc(fields)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.Internal(s.name, "update record", err)
	}
	return doc.record(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return storage.Internal(s.name, "delete record", err)
	}
	return nil
}
