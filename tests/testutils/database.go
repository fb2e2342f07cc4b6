package testutils

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"khon-reep/db"
	"khon-reep/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	cleanup := func() {
		testDB.Close()
	}

	return testDB, cleanup
}

func SetupTestRepositoryFactory(t *testing.T) (*db.RepositoryFactory, func()) {
	testDB, cleanup := SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(testDB, nil, "khonreep_test")
	return factory, cleanup
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:                "0",
		DatabaseType:        config.SQLite,
		SQLitePath:          ":memory:",
		DatabaseName:        "khonreep_test",
		IPLookupURL:         "http://127.0.0.1:0/ip",
		TileURL:             config.DefaultTileURL,
		SessionSecret:       "test_session_secret_for_testing_only",
		PinFeedbackDuration: 2 * time.Second,
		NSQTopic:            "locations",
	}
}
