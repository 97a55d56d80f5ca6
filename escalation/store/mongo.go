package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursemate/coursemate/config"
	coursemateerrors "github.com/coursemate/coursemate/errors"
	"github.com/coursemate/coursemate/escalation"
	"github.com/coursemate/coursemate/passage"
)

// MongoStore implements escalation.Store using MongoDB
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
		Database:   "coursemate",
		Collection: "escalations",
	}
}

// mongoEscalation is the internal representation for MongoDB
type mongoEscalation struct {
	ID         string     `bson:"_id"`
	CourseID   string     `bson:"course_id"`
	StudentID  string     `bson:"student_id"`
	Query      string     `bson:"query"`
	Category   string     `bson:"category,omitempty"`
	Status     string     `bson:"status"`
	Response   string     `bson:"response,omitempty"`
	CreatedAt  time.Time  `bson:"created_at"`
	ResolvedAt *time.Time `bson:"resolved_at,omitempty"`
}

// NewMongoStore creates a new MongoDB-based escalation store
func NewMongoStore(cfg *MongoConfig) (*MongoStore, error) {
	if cfg == nil {
		cfg = DefaultMongoConfig()
	}
	if err := config.ValidateMongoDBConfig(cfg.URI, cfg.Database, cfg.Collection); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	store := &MongoStore{client: client, collection: collection}

	if err := store.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert persists a new escalation record.
func (s *MongoStore) Insert(ctx context.Context, esc *escalation.Escalation) error {
	if esc == nil {
		return fmt.Errorf("escalation cannot be nil")
	}
	if esc.ID == "" {
		return fmt.Errorf("escalation ID cannot be empty")
	}

	doc := mongoEscalation{
		ID:         esc.ID,
		CourseID:   esc.CourseID,
		StudentID:  esc.StudentID,
		Query:      esc.Query,
		Category:   string(esc.Category),
		Status:     string(esc.Status),
		Response:   esc.Response,
		CreatedAt:  esc.CreatedAt,
		ResolvedAt: esc.ResolvedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert escalation: %w", err)
	}
	return nil
}

// Get retrieves an escalation by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*escalation.Escalation, error) {
	var doc mongoEscalation
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("escalation %s: %w", id, coursemateerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}
	return doc.toEscalation(), nil
}

// ListByCourse lists escalations for a course, newest first.
func (s *MongoStore) ListByCourse(ctx context.Context, courseID string, status escalation.Status) ([]*escalation.Escalation, error) {
	filter := bson.M{"course_id": courseID}
	if status != "" {
		filter["status"] = string(status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer cursor.Close(ctx)

	var escalations []*escalation.Escalation
	for cursor.Next(ctx) {
		var doc mongoEscalation
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode escalation: %w", err)
		}
		escalations = append(escalations, doc.toEscalation())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalations: %w", err)
	}
	return escalations, nil
}

// Close disconnects the MongoDB client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d *mongoEscalation) toEscalation() *escalation.Escalation {
	return &escalation.Escalation{
		ID:         d.ID,
		CourseID:   d.CourseID,
		StudentID:  d.StudentID,
		Query:      d.Query,
		Category:   passage.ContentType(d.Category),
		Status:     escalation.Status(d.Status),
		Response:   d.Response,
		CreatedAt:  d.CreatedAt,
		ResolvedAt: d.ResolvedAt,
	}
}
