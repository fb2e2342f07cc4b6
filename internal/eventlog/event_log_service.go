package eventlog

import (
	"context"
	"fmt"
	"log"
	"time"

	"khon-reep/db"
	"khon-reep/models"
)

type EventLogService struct {
	Repository db.EventLogRepository
	dbManager  *db.DBManager
}

func NewEventLogService(repository db.EventLogRepository, dbManager *db.DBManager) *EventLogService {
	return &EventLogService{
		Repository: repository,
		dbManager:  dbManager,
	}
}

func (s *EventLogService) GetAll(ctx context.Context, limit int) ([]*models.EventLog, error) {
	eventLogs, err := s.Repository.FindLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load event logs: %w", err)
	}
	for _, eventLog := range eventLogs {
		if eventLog.Description == "" {
			eventLog.Description = generateDescription(eventLog)
		}
	}
	return eventLogs, nil
}

func generateDescription(eventLog *models.EventLog) string {
	locationInfo := "unknown location"
	if eventLog.LocationID != nil {
		locationInfo = *eventLog.LocationID
	}

	switch eventLog.Type {
	case models.PinSubmitted:
		return fmt.Sprintf("Pin [%s] submitted", locationInfo)
	case models.PinRejected:
		return "Pin rejected: location unavailable"
	case models.PinSaveFailed:
		return "Pin could not be saved"
	case models.LocationsFetched:
		return "Locations fetched for map"
	case models.LocationsFetchFailed:
		return "Locations could not be fetched"
	case models.Warning:
		return "Warning event occurred"
	default:
		return "Event occurred"
	}
}

func (s *EventLogService) CreateOne(ctx context.Context, eventLog *models.EventLog) error {
	now := time.Now().UTC()
	eventLog.CreatedAt = &now
	eventLog.UpdatedAt = &now

	if s.dbManager != nil {
		return s.dbManager.CreateEventLog(s.Repository, ctx, eventLog)
	}
	return s.Repository.Create(ctx, eventLog)
}

// Record stores an event and only logs a failure. The user flow never waits
// on the audit trail succeeding.
func (s *EventLogService) Record(ctx context.Context, eventType models.EEventLogType, description string, locationID *string) {
	eventLog := &models.EventLog{
		Type:        eventType,
		Description: description,
		LocationID:  locationID,
	}
	if err := s.CreateOne(ctx, eventLog); err != nil {
		log.Printf("Failed to record %q event: %v", eventType, err)
	}
}
