package db

import (
	"context"
	"log"

	"khon-reep/models"
)

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serializes writes to a single-writer database such as SQLite
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	go m.worker()
	log.Println("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			op.Result <- op.Execute()
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation runs execute on the worker and waits for its error
func (m *DBManager) ExecuteOperation(ctx context.Context, execute func() error) error {
	resultChan := make(chan error, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-resultChan
}

// ExecuteOperationWithResult runs execute on the worker and waits for its result
func (m *DBManager) ExecuteOperationWithResult(ctx context.Context, execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	select {
	case m.resultOpQueue <- OperationWithResult{Execute: execute, Result: resultChan}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	result := <-resultChan
	return result.Data, result.Error
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// CreateLocation serializes location inserts
func (m *DBManager) CreateLocation(repo LocationRepository, ctx context.Context, location *models.Location) (*models.Location, error) {
	result, err := m.ExecuteOperationWithResult(ctx, func() (interface{}, error) {
		return repo.Create(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Location), nil
}

// CreateEventLog serializes access to event log creation
func (m *DBManager) CreateEventLog(repo EventLogRepository, ctx context.Context, eventLog *models.EventLog) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.Create(ctx, eventLog)
	})
}
