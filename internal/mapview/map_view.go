// Package mapview keeps a marker map in step with a list of location
// records. The drawing itself happens on a Surface.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"khon-reep/internal/catalog"
	"khon-reep/internal/geolocation"
	"khon-reep/models"
)

var ErrNotMounted = errors.New("map view is not mounted")

const (
	DefaultZoom   = 6
	SelfZoom      = 15
	BoundsPadding = 0.1
	SelfMarkerID  = "self"
)

// DefaultCenter is Bangkok
var DefaultCenter = models.Position{Latitude: 13.7563, Longitude: 100.5018}

type drawnMarker struct {
	position models.Position
	typ      models.IncidentType
}

// MapView owns at most one surface at a time. It is not safe for concurrent
// use; callers serialize access.
type MapView struct {
	catalog    *catalog.Catalog
	newSurface SurfaceFactory

	surface Surface
	markers map[string]drawnMarker
	self    *models.Position
}

func NewMapView(c *catalog.Catalog, factory SurfaceFactory) *MapView {
	return &MapView{
		catalog:    c,
		newSurface: factory,
	}
}

func (v *MapView) Mounted() bool {
	return v.surface != nil
}

// Mount creates the surface and shows the default view. Mounting an already
// mounted view does nothing.
func (v *MapView) Mount() {
	if v.surface != nil {
		return
	}
	v.surface = v.newSurface()
	v.markers = make(map[string]drawnMarker)
	v.self = nil
	v.surface.SetView(DefaultCenter, DefaultZoom)
}

// Unmount releases the surface along with every marker drawn on it
func (v *MapView) Unmount() {
	if v.surface == nil {
		return
	}
	v.surface.Remove()
	v.surface = nil
	v.markers = nil
	v.self = nil
}

// Render reconciles the drawn markers with records so that exactly one
// marker exists per record, then refits the viewport.
func (v *MapView) Render(records []*models.Location) error {
	if v.surface == nil {
		return ErrNotMounted
	}

	wanted := make(map[string]*models.Location, len(records))
	order := make([]string, 0, len(records))
	for i, record := range records {
		if record == nil {
			continue
		}
		key := markerKey(record, i, wanted)
		wanted[key] = record
		order = append(order, key)
	}

	for id := range v.markers {
		if _, ok := wanted[id]; !ok {
			v.surface.RemoveMarker(id)
			delete(v.markers, id)
		}
	}

	for _, id := range order {
		record := wanted[id]
		drawn := drawnMarker{position: record.Position(), typ: record.Type}
		if existing, ok := v.markers[id]; ok {
			if existing == drawn {
				continue
			}
			v.surface.RemoveMarker(id)
		}
		v.surface.AddMarker(Marker{
			ID:       id,
			Position: drawn.position,
			Type:     record.Type,
			Style:    v.catalog.StyleFor(record.Type),
			Popup:    PopupFor(v.catalog, record),
		})
		v.markers[id] = drawn
	}

	v.fitViewport()
	return nil
}

// markerKey is normally the record id. Records without an id, or repeating
// one already seen, get a positional key so each record keeps its own marker.
func markerKey(record *models.Location, index int, taken map[string]*models.Location) string {
	key := record.ID
	if key == "" || key == SelfMarkerID {
		key = fmt.Sprintf("record-%d", index)
	}
	if _, dup := taken[key]; dup {
		key = fmt.Sprintf("%s#%d", key, index)
	}
	return key
}

// ShowSelf asks locator for the viewer's position and draws the "you are
// here" marker. Locator failures are logged and otherwise ignored.
func (v *MapView) ShowSelf(ctx context.Context, locator geolocation.Locator) error {
	if v.surface == nil {
		return ErrNotMounted
	}

	position, err := locator.CurrentPosition(ctx)
	if err != nil {
		log.Printf("Could not place self marker: %v", err)
		return nil
	}

	if v.self != nil {
		v.surface.RemoveMarker(SelfMarkerID)
	}
	v.self = &position
	v.surface.AddMarker(Marker{
		ID:        SelfMarkerID,
		Position:  position,
		Style:     v.catalog.Self.Style,
		Popup:     selfPopup(v.catalog, position),
		OpenPopup: true,
		Self:      true,
	})
	v.fitViewport()
	return nil
}

// MarkerIDs lists the ids of the drawn location markers in sorted order
func (v *MapView) MarkerIDs() []string {
	ids := make([]string, 0, len(v.markers))
	for id := range v.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (v *MapView) fitViewport() {
	if len(v.markers) > 0 {
		positions := make([]models.Position, 0, len(v.markers))
		for _, m := range v.markers {
			positions = append(positions, m.position)
		}
		bounds, _ := models.BoundsOf(positions)
		v.surface.FitBounds(bounds.Pad(BoundsPadding))
		return
	}
	if v.self != nil {
		v.surface.SetView(*v.self, SelfZoom)
		return
	}
	v.surface.SetView(DefaultCenter, DefaultZoom)
}

type sceneSource interface {
	Scene() Scene
}

// Scene returns what the mounted surface currently shows
func (v *MapView) Scene() (Scene, error) {
	if v.surface == nil {
		return Scene{}, ErrNotMounted
	}
	s, ok := v.surface.(sceneSource)
	if !ok {
		return Scene{}, fmt.Errorf("surface %T cannot produce a scene", v.surface)
	}
	return s.Scene(), nil
}
