package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	cfg "github.com/fairlabor/pobot/config"
	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/session"
)

// MongoStore implements session storage using MongoDB. Each session is one
// document embedding its messages, buyers, and reports, so deleting the
// document cascades naturally.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns default MongoDB configuration
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "pobot",
		Collection: "sessions",
	}
}

// NewMongoStore creates a new MongoDB-based session store
func NewMongoStore(config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	if err := cfg.ValidateMongoDBConfig(config.URI, config.Database, config.Collection); err != nil {
		return nil, fmt.Errorf("invalid MongoDB configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(config.Database).Collection(config.Collection)

	store := &MongoStore{
		client:     client,
		collection: collection,
	}

	if err := store.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

// mongoSession is the internal document representation
type mongoSession struct {
	ID      string           `bson:"_id"`
	Payload *session.Session `bson:"payload"`
}

// Save upserts the full session document.
func (s *MongoStore) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	doc := mongoSession{ID: sess.ID, Payload: sess.Clone()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sess.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load loads a session document.
func (s *MongoStore) Load(ctx context.Context, id string) (*session.Session, error) {
	var doc mongoSession
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return doc.Payload, nil
}

// Delete removes a session document and everything embedded in it.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// List returns all session IDs.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode session id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

// Count returns the number of stored sessions.
func (s *MongoStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return int(count), nil
}

// Exists checks if a session exists.
func (s *MongoStore) Exists(ctx context.Context, id string) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return count > 0, nil
}

// AppendMessage adds a message to the session's ordered log.
func (s *MongoStore) AppendMessage(ctx context.Context, sessionID string, msg *message.Message) error {
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.AppendMessage(message.Clone(msg))
	})
}

// AddBuyerCompany records a resolved buyer, deduplicated by name.
func (s *MongoStore) AddBuyerCompany(ctx context.Context, sessionID, name string) error {
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.AddBuyerCompany(name)
	})
}

// AddReport appends a violation report to the session.
func (s *MongoStore) AddReport(ctx context.Context, sessionID string, report *session.ViolationReport) error {
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.AddReport(report.Clone())
	})
}

func (s *MongoStore) mutate(ctx context.Context, sessionID string, fn func(*session.Session)) error {
	sess, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(sess)
	return s.Save(ctx, sess)
}

// Close disconnects the MongoDB client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
