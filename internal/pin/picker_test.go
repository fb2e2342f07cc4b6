package pin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"khon-reep/internal/catalog"
	"khon-reep/internal/geolocation"
	"khon-reep/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	created []*models.Location
	err     error
}

func (s *fakeStore) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	stored := *location
	stored.ID = "store-id"
	now := time.Now()
	stored.CreatedAt = &now
	s.created = append(s.created, &stored)
	return &stored, nil
}

type fakeIPLookup struct {
	ip  string
	err error
}

func (f fakeIPLookup) GetIPAddress(ctx context.Context) (string, error) {
	return f.ip, f.err
}

type fakeTarget struct {
	locations []*models.Location
	alerts    []string
	successes int
}

func (t *fakeTarget) AppendLocation(location *models.Location) { t.locations = append(t.locations, location) }
func (t *fakeTarget) Alert(message string)                     { t.alerts = append(t.alerts, message) }
func (t *fakeTarget) SignalSuccess()                           { t.successes++ }

type recordedEvent struct {
	eventType models.EEventLogType
}

type fakeEvents struct{ events []recordedEvent }

func (f *fakeEvents) Record(ctx context.Context, eventType models.EEventLogType, description string, locationID *string) {
	f.events = append(f.events, recordedEvent{eventType: eventType})
}

var here = geolocation.Static{Position: models.Position{Latitude: 13.7563, Longitude: 100.5018}}

func TestOptions(t *testing.T) {
	options := Options(catalog.Default())
	require.Len(t, options, 4)
	for i, option := range options {
		assert.Equal(t, models.IncidentTypes[i], option.Type)
		assert.NotEmpty(t, option.Label)
		assert.NotEmpty(t, option.Style.Color)
	}
}

func TestPicker_SubmitEveryType(t *testing.T) {
	for _, incidentType := range models.IncidentTypes {
		t.Run(string(incidentType), func(t *testing.T) {
			store := &fakeStore{}
			target := &fakeTarget{}
			picker := NewPicker(store, fakeIPLookup{ip: "203.0.113.7"}, nil)

			local, err := picker.Submit(context.Background(), target, Submission{
				Type:      incidentType,
				Locator:   here,
				UserAgent: "Mozilla/5.0",
			})
			require.NoError(t, err)

			require.Len(t, store.created, 1)
			written := store.created[0]
			assert.Equal(t, incidentType, written.Type)
			assert.Equal(t, 13.7563, written.Latitude)
			assert.Equal(t, 100.5018, written.Longitude)
			assert.Equal(t, "Mozilla/5.0", written.UserAgent)
			assert.Equal(t, "203.0.113.7", written.IPAddress)

			require.Len(t, target.locations, 1)
			assert.Same(t, local, target.locations[0])
			assert.True(t, strings.HasPrefix(local.ID, TemporaryIDPrefix))
			assert.True(t, local.IsPending())
			assert.Equal(t, incidentType, local.Type)
			assert.Empty(t, target.alerts)
			assert.Equal(t, 1, target.successes)
		})
	}
}

func TestPicker_GeolocationFailure(t *testing.T) {
	cases := map[string]struct {
		err   error
		alert string
	}{
		"PermissionDenied": {geolocation.ErrPermissionDenied, AlertLocationUnavailable},
		"Timeout":          {geolocation.ErrTimeout, AlertLocationUnavailable},
		"Unavailable":      {geolocation.ErrPositionUnavailable, AlertLocationUnavailable},
		"Unsupported":      {geolocation.ErrUnsupported, AlertGeolocationUnsupported},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			target := &fakeTarget{}
			events := &fakeEvents{}
			picker := NewPicker(store, fakeIPLookup{ip: "203.0.113.7"}, events)

			_, err := picker.Submit(context.Background(), target, Submission{
				Type:    models.WrongDirection,
				Locator: geolocation.Static{Err: tc.err},
			})
			require.ErrorIs(t, err, ErrLocationUnavailable)
			assert.ErrorIs(t, err, tc.err)

			assert.Empty(t, store.created, "nothing written")
			assert.Empty(t, target.locations)
			assert.Equal(t, []string{tc.alert}, target.alerts)
			assert.Zero(t, target.successes)
			require.Len(t, events.events, 1)
			assert.Equal(t, models.PinRejected, events.events[0].eventType)
		})
	}
}

func TestPicker_IPLookupFailure(t *testing.T) {
	store := &fakeStore{}
	target := &fakeTarget{}
	picker := NewPicker(store, fakeIPLookup{err: errors.New("no route to host")}, nil)

	_, err := picker.Submit(context.Background(), target, Submission{Type: models.ZebraCrossingMisuse, Locator: here})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, models.UnknownIPAddress, store.created[0].IPAddress)
	assert.Len(t, target.locations, 1)
}

func TestPicker_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("insert failed")}
	target := &fakeTarget{locations: []*models.Location{{ID: "existing"}}}
	picker := NewPicker(store, fakeIPLookup{ip: "203.0.113.7"}, nil)

	_, err := picker.Submit(context.Background(), target, Submission{Type: models.TrafficLightBlindness, Locator: here})
	require.ErrorIs(t, err, ErrSaveFailed)

	assert.Equal(t, []string{AlertSaveFailed}, target.alerts, "exactly one alert")
	require.Len(t, target.locations, 1, "list unchanged")
	assert.Equal(t, "existing", target.locations[0].ID)
	assert.Zero(t, target.successes)
}

func TestPicker_UnknownType(t *testing.T) {
	store := &fakeStore{}
	target := &fakeTarget{}
	picker := NewPicker(store, fakeIPLookup{ip: "203.0.113.7"}, nil)

	_, err := picker.Submit(context.Background(), target, Submission{Type: "POTHOLE", Locator: here})
	require.ErrorIs(t, err, ErrUnknownIncidentType)
	assert.Empty(t, store.created)
	assert.Empty(t, target.alerts)
}

func TestPicker_DistinctTemporaryIDs(t *testing.T) {
	target := &fakeTarget{}
	picker := NewPicker(&fakeStore{}, fakeIPLookup{ip: "203.0.113.7"}, nil)

	for i := 0; i < 3; i++ {
		_, err := picker.Submit(context.Background(), target, Submission{Type: models.WrongDirection, Locator: here})
		require.NoError(t, err)
	}
	require.Len(t, target.locations, 3)
	assert.NotEqual(t, target.locations[0].ID, target.locations[1].ID)
	assert.NotEqual(t, target.locations[1].ID, target.locations[2].ID)
}

// callLog records the order in which the picker reaches its collaborators
type callLog struct{ calls []string }

func (c *callLog) add(call string) { c.calls = append(c.calls, call) }

type loggedLocator struct {
	log *callLog
	err error
}

func (l loggedLocator) CurrentPosition(ctx context.Context) (models.Position, error) {
	l.log.add("locate")
	if l.err != nil {
		return models.Position{}, l.err
	}
	return here.Position, nil
}

type loggedIPLookup struct{ log *callLog }

func (l loggedIPLookup) GetIPAddress(ctx context.Context) (string, error) {
	l.log.add("ip")
	return "203.0.113.7", nil
}

type loggedStore struct {
	log *callLog
	err error
}

func (s loggedStore) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	s.log.add("create")
	if s.err != nil {
		return nil, s.err
	}
	stored := *location
	stored.ID = "store-id"
	return &stored, nil
}

type loggedTarget struct{ log *callLog }

func (t loggedTarget) AppendLocation(location *models.Location) { t.log.add("append") }
func (t loggedTarget) Alert(message string)                     { t.log.add("alert") }
func (t loggedTarget) SignalSuccess()                           { t.log.add("success") }

func TestPicker_StepOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		calls := &callLog{}
		picker := NewPicker(loggedStore{log: calls}, loggedIPLookup{log: calls}, nil)

		_, err := picker.Submit(context.Background(), loggedTarget{log: calls}, Submission{
			Type:    models.WrongDirection,
			Locator: loggedLocator{log: calls},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"locate", "ip", "create", "append", "success"}, calls.calls)
	})

	t.Run("GeolocationFailureStopsBeforeIPLookup", func(t *testing.T) {
		calls := &callLog{}
		picker := NewPicker(loggedStore{log: calls}, loggedIPLookup{log: calls}, nil)

		_, err := picker.Submit(context.Background(), loggedTarget{log: calls}, Submission{
			Type:    models.WrongDirection,
			Locator: loggedLocator{log: calls, err: geolocation.ErrPermissionDenied},
		})
		require.ErrorIs(t, err, ErrLocationUnavailable)
		assert.Equal(t, []string{"locate", "alert"}, calls.calls)
	})

	t.Run("StoreFailureSkipsAppend", func(t *testing.T) {
		calls := &callLog{}
		picker := NewPicker(loggedStore{log: calls, err: errors.New("insert failed")}, loggedIPLookup{log: calls}, nil)

		_, err := picker.Submit(context.Background(), loggedTarget{log: calls}, Submission{
			Type:    models.WrongDirection,
			Locator: loggedLocator{log: calls},
		})
		require.ErrorIs(t, err, ErrSaveFailed)
		assert.Equal(t, []string{"locate", "ip", "create", "alert"}, calls.calls)
	})
}

func TestPicker_ReportedIPSkipsLookup(t *testing.T) {
	calls := &callLog{}
	store := &fakeStore{}
	picker := NewPicker(store, loggedIPLookup{log: calls}, nil)

	_, err := picker.Submit(context.Background(), &fakeTarget{}, Submission{
		Type:       models.WrongDirection,
		Locator:    here,
		ReportedIP: "198.51.100.7",
	})
	require.NoError(t, err)
	assert.Empty(t, calls.calls)
	require.Len(t, store.created, 1)
	assert.Equal(t, "198.51.100.7", store.created[0].IPAddress)
}
