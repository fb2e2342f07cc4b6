package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"khon-reep/models"

	"github.com/supabase-community/postgrest-go"
)

const locationsTable = "locations"

// PostgRESTLocationRepository talks to a hosted backend-as-a-service that
// exposes the locations table over a PostgREST API under /rest/v1.
type PostgRESTLocationRepository struct {
	client *postgrest.Client
}

// NewPostgRESTLocationRepository creates a new PostgRESTLocationRepository
func NewPostgRESTLocationRepository(baseURL, apiKey string) *PostgRESTLocationRepository {
	headers := map[string]string{}
	if apiKey != "" {
		headers["apikey"] = apiKey
	}
	client := postgrest.NewClient(strings.TrimRight(baseURL, "/")+"/rest/v1", "", headers)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &PostgRESTLocationRepository{client: client}
}

// Close is a no-op; the HTTP client holds no dedicated connection
func (r *PostgRESTLocationRepository) Close() error {
	return nil
}

type postgrestRow struct {
	ID        json.RawMessage `json:"id"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Type      string          `json:"type"`
	UserAgent *string         `json:"user_agent"`
	IPAddress *string         `json:"ip_address"`
	CreatedAt *string         `json:"created_at"`
	UpdatedAt *string         `json:"updated_at"`
}

type postgrestInsert struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"`
	UserAgent string  `json:"user_agent,omitempty"`
	IPAddress string  `json:"ip_address,omitempty"`
}

// FindAll selects every row of the locations table
func (r *PostgRESTLocationRepository) FindAll(ctx context.Context) ([]*models.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, _, err := r.client.From(locationsTable).Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("error selecting locations: %w", err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("error selecting locations: %w", err)
	}

	locations := make([]*models.Location, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, row.toLocation())
	}
	return locations, nil
}

// Create inserts one row and returns the representation the store sends back
func (r *PostgRESTLocationRepository) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := []postgrestInsert{{
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
		Type:      string(location.Type),
		UserAgent: location.UserAgent,
		IPAddress: location.IPAddress,
	}}

	body, _, err := r.client.From(locationsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("error inserting location: %w", err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("error inserting location: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("error inserting location: store returned no representation")
	}
	return rows[0].toLocation(), nil
}

func decodeRows(body []byte) ([]postgrestRow, error) {
	var rows []postgrestRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("error decoding store response: %w", err)
	}
	return rows, nil
}

func (row postgrestRow) toLocation() *models.Location {
	location := &models.Location{
		ID:        rawID(row.ID),
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Type:      models.IncidentType(row.Type),
		CreatedAt: parseTimestamp(row.CreatedAt),
		UpdatedAt: parseTimestamp(row.UpdatedAt),
		Status:    models.RecordStatusConfirmed,
	}
	if row.UserAgent != nil {
		location.UserAgent = *row.UserAgent
	}
	if row.IPAddress != nil {
		location.IPAddress = *row.IPAddress
	}
	return location
}

// rawID accepts both text (uuid) and numeric (bigserial) primary keys
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
}

func parseTimestamp(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t
		}
	}
	return nil
}
