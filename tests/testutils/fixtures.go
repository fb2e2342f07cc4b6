package testutils

import (
	"time"

	"khon-reep/models"

	"github.com/google/uuid"
)

func CreateTestLocation() *models.Location {
	now := time.Now().UTC()

	return &models.Location{
		ID:        uuid.New().String(),
		Latitude:  13.7563,
		Longitude: 100.5018,
		Type:      models.SidewalkOrMotorbike,
		UserAgent: "Mozilla/5.0 (test)",
		IPAddress: "203.0.113.1",
		CreatedAt: &now,
		UpdatedAt: &now,
		Status:    models.RecordStatusConfirmed,
	}
}

func CreateTestLocationOfType(incidentType models.IncidentType, lat, lng float64) *models.Location {
	location := CreateTestLocation()
	location.Type = incidentType
	location.Latitude = lat
	location.Longitude = lng
	return location
}

func CreateTestEventLog(locationID string) *models.EventLog {
	now := time.Now()
	return &models.EventLog{
		Type:        models.PinSubmitted,
		Description: "Test event message",
		LocationID:  &locationID,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
}
