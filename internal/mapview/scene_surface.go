package mapview

import (
	"sync"

	"khon-reep/models"
)

// View is the map's current center and zoom, or the bounds it was fitted to
type View struct {
	Center *models.Position `json:"center,omitempty"`
	Zoom   int              `json:"zoom,omitempty"`
	Bounds *models.Bounds   `json:"bounds,omitempty"`
}

// Scene is the serializable state of a SceneSurface. The page draws it with
// Leaflet.
type Scene struct {
	TileURL string   `json:"tile_url"`
	View    View     `json:"view"`
	Markers []Marker `json:"markers"`
}

// SceneSurface is a Surface kept in memory and handed to the browser as a
// Scene.
type SceneSurface struct {
	mu      sync.RWMutex
	tileURL string
	view    View
	markers map[string]Marker
	order   []string
	removed bool
}

func NewSceneSurface(tileURL string) *SceneSurface {
	return &SceneSurface{
		tileURL: tileURL,
		markers: make(map[string]Marker),
	}
}

// NewSceneSurfaceFactory returns a factory producing scene surfaces that
// draw tiles from tileURL.
func NewSceneSurfaceFactory(tileURL string) SurfaceFactory {
	return func() Surface {
		return NewSceneSurface(tileURL)
	}
}

func (s *SceneSurface) AddMarker(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return
	}
	if _, exists := s.markers[m.ID]; !exists {
		s.order = append(s.order, m.ID)
	}
	s.markers[m.ID] = m
}

func (s *SceneSurface) RemoveMarker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.markers[id]; !exists {
		return
	}
	delete(s.markers, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *SceneSurface) SetView(center models.Position, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{Center: &center, Zoom: zoom}
}

func (s *SceneSurface) FitBounds(b models.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{Bounds: &b}
}

func (s *SceneSurface) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
	s.markers = make(map[string]Marker)
	s.order = nil
}

func (s *SceneSurface) Removed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.removed
}

// Scene returns a copy of the surface's state with markers in the order they
// were added.
func (s *SceneSurface) Scene() Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scene := Scene{
		TileURL: s.tileURL,
		View:    s.view,
		Markers: make([]Marker, 0, len(s.order)),
	}
	for _, id := range s.order {
		scene.Markers = append(scene.Markers, s.markers[id])
	}
	return scene
}
