package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"khon-reep/internal/util"
	"khon-reep/models"
)

// SQLiteLocationRepository implements the LocationRepository interface for SQLite
type SQLiteLocationRepository struct {
	db *sql.DB
}

// NewSQLiteLocationRepository creates a new SQLiteLocationRepository
func NewSQLiteLocationRepository(db *sql.DB) *SQLiteLocationRepository {
	return &SQLiteLocationRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteLocationRepository) Close() error {
	return r.db.Close()
}

// FindAll returns every stored location, oldest first
func (r *SQLiteLocationRepository) FindAll(ctx context.Context) ([]*models.Location, error) {
	query := `SELECT id, latitude, longitude, type, user_agent, ip_address, created_at, updated_at
		FROM locations ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	locations := []*models.Location{}
	for rows.Next() {
		var location models.Location
		var incidentType string
		var userAgent, ipAddress sql.NullString
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(&location.ID, &location.Latitude, &location.Longitude, &incidentType,
			&userAgent, &ipAddress, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}

		location.Type = models.IncidentType(incidentType)
		if userAgent.Valid {
			location.UserAgent = userAgent.String
		}
		if ipAddress.Valid {
			location.IPAddress = ipAddress.String
		}
		if createdAt.Valid {
			location.CreatedAt = &createdAt.Time
		}
		if updatedAt.Valid {
			location.UpdatedAt = &updatedAt.Time
		}
		location.Status = models.RecordStatusConfirmed

		locations = append(locations, &location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// Create inserts a location and returns the stored copy with its id and timestamps
func (r *SQLiteLocationRepository) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	stored := *location
	stored.ID = GenerateID()
	now := time.Now().UTC()
	stored.CreatedAt = &now
	stored.UpdatedAt = &now

	if _, err := r.insert(ctx, "INSERT", &stored); err != nil {
		return nil, fmt.Errorf("error inserting location: %w", err)
	}

	stored.Status = models.RecordStatusConfirmed
	return &stored, nil
}

// Import stores a record that already has an id, keeping its timestamps.
// Records whose id is already present are skipped; imported reports whether
// a row was written.
func (r *SQLiteLocationRepository) Import(ctx context.Context, location *models.Location) (imported bool, err error) {
	if location.ID == "" {
		return false, fmt.Errorf("cannot import location without id")
	}
	stored := *location
	if stored.CreatedAt == nil {
		now := time.Now().UTC()
		stored.CreatedAt = &now
	}
	if stored.UpdatedAt == nil {
		stored.UpdatedAt = stored.CreatedAt
	}

	rows, err := r.insert(ctx, "INSERT OR IGNORE", &stored)
	if err != nil {
		return false, fmt.Errorf("error importing location %s: %w", location.ID, err)
	}
	return rows > 0, nil
}

func (r *SQLiteLocationRepository) insert(ctx context.Context, verb string, location *models.Location) (int64, error) {
	query := verb + ` INTO locations (id, latitude, longitude, type, user_agent, ip_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var rows int64
	err := util.RetryOnLock(func() error {
		result, err := r.db.ExecContext(ctx, query,
			location.ID, location.Latitude, location.Longitude, string(location.Type),
			nullableString(&location.UserAgent), nullableString(&location.IPAddress),
			location.CreatedAt, location.UpdatedAt,
		)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	return rows, err
}

// SQLiteEventLogRepository implements the EventLogRepository interface for SQLite
type SQLiteEventLogRepository struct {
	db *sql.DB
}

// NewSQLiteEventLogRepository creates a new SQLiteEventLogRepository
func NewSQLiteEventLogRepository(db *sql.DB) *SQLiteEventLogRepository {
	return &SQLiteEventLogRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteEventLogRepository) Close() error {
	return r.db.Close()
}

// Create creates a new event log
func (r *SQLiteEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	now := time.Now()
	if eventLog.CreatedAt == nil {
		eventLog.CreatedAt = &now
	}
	if eventLog.UpdatedAt == nil {
		eventLog.UpdatedAt = &now
	}

	query := `INSERT INTO event_logs (type, description, location_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	err := util.RetryOnLock(func() error {
		_, err := r.db.ExecContext(ctx, query,
			eventLog.Type, eventLog.Description, nullableString(eventLog.LocationID),
			eventLog.CreatedAt, eventLog.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting event log: %w", err)
	}

	return nil
}

// FindLatest finds the latest event logs
func (r *SQLiteEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	query := `SELECT type, description, location_id, created_at, updated_at
			  FROM event_logs ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying event logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.EventLog
	for rows.Next() {
		var log models.EventLog
		var locationID sql.NullString
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(&log.Type, &log.Description, &locationID, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning event log: %w", err)
		}

		if locationID.Valid {
			log.LocationID = &locationID.String
		}
		if createdAt.Valid {
			log.CreatedAt = &createdAt.Time
		}
		if updatedAt.Valid {
			log.UpdatedAt = &updatedAt.Time
		}

		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event logs: %w", err)
	}

	return logs, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
