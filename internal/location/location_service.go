// Package location is the remote store client the rest of the app talks to:
// select all and insert one, with the audit trail and broadcast attached.
package location

import (
	"context"
	"fmt"
	"log"

	"khon-reep/db"
	"khon-reep/internal/broadcast"
	"khon-reep/internal/eventlog"
	"khon-reep/models"
)

type LocationService struct {
	Repository db.LocationRepository
	dbManager  *db.DBManager
	eventLogs  *eventlog.EventLogService
	publisher  broadcast.Publisher
}

// NewLocationService wires the store. dbManager and eventLogs may be nil; a
// nil publisher disables broadcasting.
func NewLocationService(repository db.LocationRepository, dbManager *db.DBManager, eventLogs *eventlog.EventLogService, publisher broadcast.Publisher) *LocationService {
	if publisher == nil {
		publisher = broadcast.NopPublisher{}
	}
	return &LocationService{
		Repository: repository,
		dbManager:  dbManager,
		eventLogs:  eventLogs,
		publisher:  publisher,
	}
}

// FindAll returns every stored location
func (s *LocationService) FindAll(ctx context.Context) ([]*models.Location, error) {
	locations, err := s.Repository.FindAll(ctx)
	if err != nil {
		s.record(ctx, models.LocationsFetchFailed, err.Error(), nil)
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}
	s.record(ctx, models.LocationsFetched, fmt.Sprintf("Fetched %d locations", len(locations)), nil)
	return locations, nil
}

// Create inserts one location and returns the stored record
func (s *LocationService) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	var (
		created *models.Location
		err     error
	)
	if s.dbManager != nil {
		created, err = s.dbManager.CreateLocation(s.Repository, ctx, location)
	} else {
		created, err = s.Repository.Create(ctx, location)
	}
	if err != nil {
		s.record(ctx, models.PinSaveFailed, err.Error(), nil)
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	s.record(ctx, models.PinSubmitted, "", &created.ID)
	if err := s.publisher.Publish(ctx, created); err != nil {
		log.Printf("Error broadcasting location %s: %v", created.ID, err)
	}
	return created, nil
}

func (s *LocationService) record(ctx context.Context, eventType models.EEventLogType, description string, locationID *string) {
	if s.eventLogs == nil {
		return
	}
	s.eventLogs.Record(ctx, eventType, description, locationID)
}
