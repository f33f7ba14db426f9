package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements DocumentStore on MongoDB. Document ids are stored in _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials MongoDB and pings it before returning the store
func ConnectMongo(uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

var mongoOps = map[Op]string{
	OpEqual:        "$eq",
	OpNotEqual:     "$ne",
	OpLess:         "$lt",
	OpLessEqual:    "$lte",
	OpGreater:      "$gt",
	OpGreaterEqual: "$gte",
	OpIn:           "$in",
}

func (s *MongoStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	return s.find(ctx, collection, bson.D{})
}

func (s *MongoStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s/%s: %w", collection, id, err)
	}
	doc := fromBSON(raw)
	return &doc, nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, predicates ...Predicate) ([]Document, error) {
	filter := bson.D{}
	for _, p := range predicates {
		op, ok := mongoOps[p.Op]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperator, p.Op)
		}
		filter = append(filter, bson.E{Key: p.Field, Value: bson.M{op: p.Value}})
	}
	return s.find(ctx, collection, filter)
}

func (s *MongoStore) find(ctx context.Context, collection string, filter bson.D) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}
	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, fromBSON(row))
	}
	return docs, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.Create(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
		}
		return fmt.Errorf("mongo insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return s.updateOne(ctx, collection, id, data)
}

func (s *MongoStore) updateOne(ctx context.Context, collection, id string, data map[string]interface{}) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": data})
	if err != nil {
		return fmt.Errorf("mongo update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// BatchUpdate runs all patches in one multi-document transaction (requires a replica set)
func (s *MongoStore) BatchUpdate(ctx context.Context, collection string, patches []Patch) error {
	if len(patches) == 0 {
		return nil
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, p := range patches {
			if err := s.updateOne(sc, collection, p.ID, p.Data); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func fromBSON(raw bson.M) Document {
	id, _ := raw["_id"].(string)
	data := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		data[k] = v
	}
	return Document{ID: id, Data: data}
}
