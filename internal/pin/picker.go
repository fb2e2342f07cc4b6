// Package pin turns a tap on an incident option into a stored location
package pin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"khon-reep/internal/geolocation"
	"khon-reep/models"

	"github.com/google/uuid"
)

var (
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrSaveFailed          = errors.New("could not save location")
	ErrUnknownIncidentType = errors.New("unknown incident type")
)

// Messages shown to the user when a submission fails
const (
	AlertLocationUnavailable    = "Unable to retrieve location."
	AlertGeolocationUnsupported = "Geolocation is not supported by your browser."
	AlertSaveFailed             = "Could not save location."
)

// TemporaryIDPrefix marks ids fabricated for optimistic local copies
const TemporaryIDPrefix = "tmp-"

type Store interface {
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
}

type IPLookup interface {
	GetIPAddress(ctx context.Context) (string, error)
}

type EventRecorder interface {
	Record(ctx context.Context, eventType models.EEventLogType, description string, locationID *string)
}

// Target is the session that asked for the pin. It receives the optimistic
// record, alerts and the success signal.
type Target interface {
	AppendLocation(location *models.Location)
	Alert(message string)
	SignalSuccess()
}

// Submission is a single tap on an option. ReportedIP is the public IP the
// browser looked up for itself; when empty the picker looks it up.
type Submission struct {
	Type       models.IncidentType
	Locator    geolocation.Locator
	UserAgent  string
	ReportedIP string
}

type Picker struct {
	store    Store
	ipLookup IPLookup
	events   EventRecorder
}

// NewPicker creates a picker. events may be nil.
func NewPicker(store Store, ipLookup IPLookup, events EventRecorder) *Picker {
	return &Picker{
		store:    store,
		ipLookup: ipLookup,
		events:   events,
	}
}

// Submit runs the pin flow: position, public IP, insert, local append. The
// steps run strictly in that order. The returned record is the optimistic
// copy appended to target.
func (p *Picker) Submit(ctx context.Context, target Target, sub Submission) (*models.Location, error) {
	if !sub.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIncidentType, sub.Type)
	}

	position, err := sub.Locator.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, geolocation.ErrUnsupported) {
			target.Alert(AlertGeolocationUnsupported)
		} else {
			target.Alert(AlertLocationUnavailable)
		}
		log.Printf("Pin %s rejected: %v", sub.Type, err)
		p.record(ctx, models.PinRejected, err.Error(), nil)
		return nil, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}

	ipAddress := sub.ReportedIP
	if ipAddress == "" {
		ipAddress, err = p.ipLookup.GetIPAddress(ctx)
		if err != nil || ipAddress == "" {
			ipAddress = models.UnknownIPAddress
		}
	}

	record := &models.Location{
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
		Type:      sub.Type,
		UserAgent: sub.UserAgent,
		IPAddress: ipAddress,
	}

	stored, err := p.store.Create(ctx, record)
	if err != nil {
		log.Printf("Error saving %s pin: %v", sub.Type, err)
		target.Alert(AlertSaveFailed)
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	local := *record
	local.ID = TemporaryIDPrefix + uuid.New().String()
	local.Status = models.RecordStatusPending
	if stored != nil {
		local.CreatedAt = stored.CreatedAt
		local.UpdatedAt = stored.UpdatedAt
	}

	target.AppendLocation(&local)
	target.SignalSuccess()
	return &local, nil
}

func (p *Picker) record(ctx context.Context, eventType models.EEventLogType, description string, locationID *string) {
	if p.events == nil {
		return
	}
	p.events.Record(ctx, eventType, description, locationID)
}
