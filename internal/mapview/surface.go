package mapview

import (
	"html/template"

	"khon-reep/internal/catalog"
	"khon-reep/models"
)

// Marker is a single pin drawn on the surface
type Marker struct {
	ID        string              `json:"id"`
	Position  models.Position     `json:"position"`
	Type      models.IncidentType `json:"type,omitempty"`
	Style     catalog.Style       `json:"style"`
	Popup     template.HTML       `json:"popup"`
	OpenPopup bool                `json:"open_popup,omitempty"`
	Self      bool                `json:"self,omitempty"`
}

// Surface is a drawable map. Implementations hold whatever the renderer
// needs; MapView only talks to them through these calls.
type Surface interface {
	AddMarker(m Marker)
	RemoveMarker(id string)
	SetView(center models.Position, zoom int)
	FitBounds(b models.Bounds)
	// Remove releases the surface. It is never used again afterwards.
	Remove()
}

// SurfaceFactory creates a fresh surface for each mount
type SurfaceFactory func() Surface
