package models

import (
	"time"
)

type RecordStatus string

const (
	// RecordStatusPending marks an optimistic local copy that the store has
	// accepted but that has not been read back yet.
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusConfirmed RecordStatus = "confirmed"
)

// UnknownIPAddress is stored when the public IP lookup fails.
const UnknownIPAddress = "unknown"

// Location represents a single incident pin
type Location struct {
	ID        string       `bson:"_id,omitempty" json:"id"`
	Latitude  float64      `bson:"latitude" json:"latitude"`
	Longitude float64      `bson:"longitude" json:"longitude"`
	Type      IncidentType `bson:"type" json:"type"`
	UserAgent string       `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	IPAddress string       `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	CreatedAt *time.Time   `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt *time.Time   `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	Status    RecordStatus `bson:"-" json:"status,omitempty"`
}

// Position returns the coordinates of the location
func (l Location) Position() Position {
	return Position{Latitude: l.Latitude, Longitude: l.Longitude}
}

// IsPending reports whether the record only exists in the local list
func (l Location) IsPending() bool {
	return l.Status == RecordStatusPending
}
