package db

import (
	"context"
	"database/sql"
	"errors"

	"khon-reep/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrNoBackend = errors.New("no location store configured")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// LocationRepository is the remote store for incident pins. Records are
// immutable: there is no update or delete.
type LocationRepository interface {
	Repository
	FindAll(ctx context.Context) ([]*models.Location, error)
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
}

// EventLogRepository defines the interface for event log operations
type EventLogRepository interface {
	Repository
	Create(ctx context.Context, eventLog *models.EventLog) error
	FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error)
}

// RepositoryFactory creates repositories based on the configured backend
type RepositoryFactory struct {
	SQLiteDB    *sql.DB
	MongoClient *mongo.Client
	DBName      string

	// Hosted REST store, used when neither SQLite nor Mongo is set
	StoreURL    string
	StoreAPIKey string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, mongoClient *mongo.Client, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB:    sqliteDB,
		MongoClient: mongoClient,
		DBName:      dbName,
	}
}

// WithRemoteStore configures the hosted REST backend
func (f *RepositoryFactory) WithRemoteStore(storeURL, apiKey string) *RepositoryFactory {
	f.StoreURL = storeURL
	f.StoreAPIKey = apiKey
	return f
}

// NewLocationRepository creates the location repository for the configured backend
func (f *RepositoryFactory) NewLocationRepository() (LocationRepository, error) {
	switch {
	case f.SQLiteDB != nil:
		return NewSQLiteLocationRepository(f.SQLiteDB), nil
	case f.MongoClient != nil:
		return NewMongoLocationRepository(f.MongoClient, f.DBName, "locations"), nil
	case f.StoreURL != "":
		return NewPostgRESTLocationRepository(f.StoreURL, f.StoreAPIKey), nil
	default:
		return nil, ErrNoBackend
	}
}

// NewEventLogRepository creates a new event log repository. The hosted REST
// backend has no event table, so events are kept in memory there.
func (f *RepositoryFactory) NewEventLogRepository() EventLogRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteEventLogRepository(f.SQLiteDB)
	}
	if f.MongoClient != nil {
		return NewMongoEventLogRepository(f.MongoClient, f.DBName, "event_logs")
	}
	return NewMemoryEventLogRepository(200)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
