package models

import (
	"time"
)

// EventLog represents the event log entity
type EventLog struct {
	Type        EEventLogType `bson:"type" json:"type"`
	Description string        `bson:"description" json:"description"`
	LocationID  *string       `bson:"location_id,omitempty" json:"location_id,omitempty"`
	CreatedAt   *time.Time    `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   *time.Time    `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
