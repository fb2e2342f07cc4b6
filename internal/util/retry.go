package util

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	lockRetries   = 3
	lockBaseDelay = 100 * time.Millisecond
)

// RetryOnLock retries operation while SQLite reports the database as busy or
// locked. Any other error is returned immediately.
func RetryOnLock(operation func() error) error {
	var err error
	for i := 0; i < lockRetries; i++ {
		err = operation()
		if err == nil || !IsLockError(err) {
			return err
		}

		// 100ms, 200ms, 400ms
		delay := lockBaseDelay * time.Duration(1<<i)
		log.Printf("Database locked, retrying in %v...", delay)
		time.Sleep(delay)
	}
	return err
}

// IsLockError reports whether err is SQLITE_BUSY or SQLITE_LOCKED
func IsLockError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return strings.Contains(err.Error(), "database is locked")
}
