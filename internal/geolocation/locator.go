// Package geolocation wraps the device's one-shot position query. The device
// itself lives in the browser, which reports either coordinates or the
// failure it ran into.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"khon-reep/models"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
	ErrTimeout             = errors.New("geolocation timed out")
	ErrUnsupported         = errors.New("geolocation is not supported")
)

// Locator answers a single current-position query
type Locator interface {
	CurrentPosition(ctx context.Context) (models.Position, error)
}

// GeolocationPositionError codes reported by browsers
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// Report is what the browser sends back after calling
// navigator.geolocation.getCurrentPosition.
type Report struct {
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ErrorCode   int      `json:"geolocation_error,omitempty"`
	Unsupported bool     `json:"geolocation_unsupported,omitempty"`
}

// CurrentPosition implements Locator
func (r Report) CurrentPosition(ctx context.Context) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, err
	}
	if r.Unsupported {
		return models.Position{}, ErrUnsupported
	}
	if r.ErrorCode != 0 {
		return models.Position{}, ErrorForCode(r.ErrorCode)
	}
	if r.Latitude == nil || r.Longitude == nil {
		return models.Position{}, fmt.Errorf("%w: no coordinates reported", ErrPositionUnavailable)
	}
	position := models.Position{Latitude: *r.Latitude, Longitude: *r.Longitude}
	if !ValidPosition(position) {
		return models.Position{}, fmt.Errorf("%w: coordinates out of range", ErrPositionUnavailable)
	}
	return position, nil
}

// ErrorForCode maps a GeolocationPositionError code to a sentinel error
func ErrorForCode(code int) error {
	switch code {
	case CodePermissionDenied:
		return ErrPermissionDenied
	case CodeTimeout:
		return ErrTimeout
	default:
		return ErrPositionUnavailable
	}
}

// ValidPosition reports whether p is a finite point on the globe
func ValidPosition(p models.Position) bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Static always answers with the same position or error
type Static struct {
	Position models.Position
	Err      error
}

func (s Static) CurrentPosition(ctx context.Context) (models.Position, error) {
	if s.Err != nil {
		return models.Position{}, s.Err
	}
	return s.Position, nil
}
