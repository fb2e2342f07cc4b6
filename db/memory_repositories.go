package db

import (
	"context"
	"sync"
	"time"

	"khon-reep/models"
)

// MemoryEventLogRepository keeps the most recent events in a fixed-size ring
type MemoryEventLogRepository struct {
	mu       sync.Mutex
	capacity int
	logs     []*models.EventLog
}

// NewMemoryEventLogRepository creates a ring holding at most capacity events
func NewMemoryEventLogRepository(capacity int) *MemoryEventLogRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryEventLogRepository{capacity: capacity}
}

func (r *MemoryEventLogRepository) Close() error {
	return nil
}

func (r *MemoryEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	now := time.Now()
	if eventLog.CreatedAt == nil {
		eventLog.CreatedAt = &now
	}
	if eventLog.UpdatedAt == nil {
		eventLog.UpdatedAt = &now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := *eventLog
	r.logs = append(r.logs, &entry)
	if len(r.logs) > r.capacity {
		r.logs = r.logs[len(r.logs)-r.capacity:]
	}
	return nil
}

// FindLatest returns up to limit events, newest first
func (r *MemoryEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var logs []*models.EventLog
	for i := len(r.logs) - 1; i >= 0 && len(logs) < limit; i-- {
		entry := *r.logs[i]
		logs = append(logs, &entry)
	}
	return logs, nil
}
