package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCollection is the collection name for stored documents.
const mongoCollection = "documents"

// MongoStore is a MongoDB-backed document store for server deployments.
// Expiration is enforced twice: a TTL index reaps expired documents in
// the background, and reads double-check so a document never outlives
// its ExpiresAt between reaper runs.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the document collection,
// including its name and TTL indexes.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Ping verifies the server is reachable. Useful at startup before
// accepting traffic.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if doc.IsExpired() {
		return nil, nil
	}
	return &doc, nil
}

func (s *MongoStore) Put(ctx context.Context, doc *Document) error {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"name": doc.Name,
		"_id":  bson.M{"$ne": doc.ID},
	})
	if err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if count > 0 {
		return ErrDuplicateName
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = filter.Name
	}
	if filter.RootTag != "" {
		query["root_tag"] = filter.RootTag
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	// Drop anything the TTL reaper hasn't collected yet.
	live := docs[:0]
	for _, doc := range docs {
		if !doc.IsExpired() {
			live = append(live, doc)
		}
	}
	return live, nil
}

// Cleanup removes expired documents immediately instead of waiting for
// the TTL reaper.
func (s *MongoStore) Cleanup(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	if err != nil {
		return fmt.Errorf("cleanup documents: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
