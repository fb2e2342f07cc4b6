package db

import (
	"context"
	"fmt"
	"time"

	"khon-reep/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLocationRepository implements the LocationRepository interface for MongoDB
type MongoLocationRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoLocationRepository creates a new MongoLocationRepository
func NewMongoLocationRepository(client *mongo.Client, database, collection string) *MongoLocationRepository {
	return &MongoLocationRepository{
		client:     client,
		database:   database,
		collection: collection,
	}
}

// Close closes the MongoDB connection
func (r *MongoLocationRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// FindAll returns every stored location, oldest first
func (r *MongoLocationRepository) FindAll(ctx context.Context) ([]*models.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.client.Database(r.database).Collection(r.collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding locations: %w", err)
	}
	defer cursor.Close(ctx)

	locations := []*models.Location{}
	for cursor.Next(ctx) {
		var location models.Location
		if err := cursor.Decode(&location); err != nil {
			return nil, fmt.Errorf("error decoding location: %w", err)
		}
		location.Status = models.RecordStatusConfirmed
		locations = append(locations, &location)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// Create inserts a location and returns the stored copy
func (r *MongoLocationRepository) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	stored := *location
	stored.ID = GenerateID()
	now := time.Now().UTC()
	stored.CreatedAt = &now
	stored.UpdatedAt = &now

	_, err := r.client.Database(r.database).Collection(r.collection).InsertOne(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("error inserting location: %w", err)
	}

	stored.Status = models.RecordStatusConfirmed
	return &stored, nil
}

// MongoEventLogRepository implements the EventLogRepository interface for MongoDB
type MongoEventLogRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoEventLogRepository creates a new MongoEventLogRepository
func NewMongoEventLogRepository(client *mongo.Client, database, collection string) *MongoEventLogRepository {
	return &MongoEventLogRepository{
		client:     client,
		database:   database,
		collection: collection,
	}
}

// Close closes the MongoDB connection
func (r *MongoEventLogRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// Create creates a new event log
func (r *MongoEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	now := time.Now()
	if eventLog.CreatedAt == nil {
		eventLog.CreatedAt = &now
	}
	if eventLog.UpdatedAt == nil {
		eventLog.UpdatedAt = &now
	}

	_, err := r.client.Database(r.database).Collection(r.collection).InsertOne(ctx, eventLog)
	if err != nil {
		return fmt.Errorf("error inserting event log: %w", err)
	}
	return nil
}

// FindLatest finds the latest event logs
func (r *MongoEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.client.Database(r.database).Collection(r.collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding event logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*models.EventLog
	for cursor.Next(ctx) {
		var log models.EventLog
		if err := cursor.Decode(&log); err != nil {
			return nil, fmt.Errorf("error decoding event log: %w", err)
		}
		logs = append(logs, &log)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event logs: %w", err)
	}

	return logs, nil
}
