// Package session keeps the per-browser state: which tab is showing, the
// local location list, the map view and the pin success indicator.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"khon-reep/internal/geolocation"
	"khon-reep/internal/mapview"
	"khon-reep/internal/pin"
	"khon-reep/models"
)

type Tab string

const (
	TabPin Tab = "pin"
	TabMap Tab = "map"
)

var ErrUnknownTab = errors.New("unknown tab")

// ParseTab validates a tab name coming from the client
func ParseTab(name string) (Tab, error) {
	switch Tab(name) {
	case TabPin, TabMap:
		return Tab(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
}

// Store is the read side of the remote store
type Store interface {
	FindAll(ctx context.Context) ([]*models.Location, error)
}

// State is a snapshot of a coordinator for the page
type State struct {
	ActiveTab          Tab                `json:"active_tab"`
	Locations          []*models.Location `json:"locations"`
	PinCount           int                `json:"pin_count"`
	Success            bool               `json:"success"`
	SuccessRemainingMS int64              `json:"success_remaining_ms"`
}

// Coordinator switches between the Pin and Map tabs. It is safe for
// concurrent use; a pin submission never holds its lock while waiting on
// the network.
type Coordinator struct {
	mu        sync.Mutex
	store     Store
	mapView   *mapview.MapView
	feedback  *pin.Feedback
	activeTab Tab
	locations []*models.Location
	pinCount  int
	lastSeen  time.Time
}

func NewCoordinator(store Store, mapView *mapview.MapView, feedback *pin.Feedback) *Coordinator {
	return &Coordinator{
		store:     store,
		mapView:   mapView,
		feedback:  feedback,
		activeTab: TabPin,
		lastSeen:  time.Now(),
	}
}

func (c *Coordinator) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTab
}

// SwitchTab activates tab. Entering the Map tab refetches every location
// once, replacing the local list, and mounts the map. Leaving it releases the
// map. Switching to the tab already showing does nothing.
func (c *Coordinator) SwitchTab(ctx context.Context, tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()

	if tab == c.activeTab {
		return nil
	}
	c.activeTab = tab

	if tab == TabPin {
		c.mapView.Unmount()
		return nil
	}

	locations, err := c.store.FindAll(ctx)
	if err != nil {
		log.Printf("Error fetching locations for map: %v", err)
		locations = nil
	}
	c.locations = locations

	c.mapView.Mount()
	if err := c.mapView.Render(c.locations); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	return nil
}

// AppendLocation adds the optimistic copy of a just-stored pin
func (c *Coordinator) AppendLocation(location *models.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations = append(c.locations, location)
	if c.mapView.Mounted() {
		if err := c.mapView.Render(c.locations); err != nil {
			log.Printf("Error rendering appended location %s: %v", location.ID, err)
		}
	}
}

// SignalSuccess starts the success indicator and counts the pin
func (c *Coordinator) SignalSuccess() {
	c.mu.Lock()
	c.pinCount++
	c.mu.Unlock()
	c.feedback.Trigger()
}

// Locations returns a copy of the local list
func (c *Coordinator) Locations() []*models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.Location(nil), c.locations...)
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
	return State{
		ActiveTab:          c.activeTab,
		Locations:          append([]*models.Location{}, c.locations...),
		PinCount:           c.pinCount,
		Success:            c.feedback.Active(),
		SuccessRemainingMS: c.feedback.Remaining().Milliseconds(),
	}
}

// Scene returns the map scene while the Map tab is showing
func (c *Coordinator) Scene() (mapview.Scene, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapView.Scene()
}

// ShowSelf places the "you are here" marker on the mounted map
func (c *Coordinator) ShowSelf(ctx context.Context, locator geolocation.Locator) (mapview.Scene, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mapView.ShowSelf(ctx, locator); err != nil {
		return mapview.Scene{}, err
	}
	return c.mapView.Scene()
}

func (c *Coordinator) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Close releases the map and stops the success timer
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapView.Unmount()
	c.feedback.Stop()
}

// RequestTarget receives the outcome of one pin submission. Locations and
// success go to the coordinator; alerts stay with the request so the
// response can carry them. The coordinator itself keeps no alerts.
type RequestTarget struct {
	coordinator *Coordinator
	mu          sync.Mutex
	alerts      []string
}

func (c *Coordinator) NewRequestTarget() *RequestTarget {
	return &RequestTarget{coordinator: c}
}

func (t *RequestTarget) AppendLocation(location *models.Location) {
	t.coordinator.AppendLocation(location)
}

func (t *RequestTarget) SignalSuccess() {
	t.coordinator.SignalSuccess()
}

func (t *RequestTarget) Alert(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alerts = append(t.alerts, message)
}

func (t *RequestTarget) Alerts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.alerts...)
}
