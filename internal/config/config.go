package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseType string

const (
	MongoDB   DatabaseType = "mongodb"
	SQLite    DatabaseType = "sqlite"
	PostgREST DatabaseType = "postgrest"
)

const (
	DefaultIPLookupURL = "https://api64.ipify.org?format=json"
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
)

type Config struct {
	Port         string
	PublicURL    string
	DatabaseType DatabaseType
	DatabaseName string
	// MongoDB config
	MongoURI string
	// SQLite config
	SQLitePath string
	// Hosted store config
	StoreURL    string
	StoreAPIKey string

	IPLookupURL         string
	TileURL             string
	SessionSecret       string
	PinFeedbackDuration time.Duration
	IncidentCatalogPath string

	NSQAddr  string
	NSQTopic string

	SnapshotEnabled bool
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the process environment still applies
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	databaseName := getenv("DATABASE_NAME", "khonreep")
	port := getenv("PORT", "3000")

	config := &Config{
		Port:                port,
		PublicURL:           getenv("PUBLIC_URL", "http://localhost:"+port),
		DatabaseType:        DatabaseType(getenv("DATABASE_TYPE", string(SQLite))),
		DatabaseName:        databaseName,
		IPLookupURL:         getenv("IP_LOOKUP_URL", DefaultIPLookupURL),
		TileURL:             getenv("TILE_URL", DefaultTileURL),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		IncidentCatalogPath: os.Getenv("INCIDENT_CATALOG_PATH"),
		NSQAddr:             os.Getenv("NSQ_ADDR"),
		NSQTopic:            getenv("NSQ_TOPIC", "locations"),
	}

	if config.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set in .env file")
	}

	feedback, err := time.ParseDuration(getenv("PIN_FEEDBACK_DURATION", "2s"))
	if err != nil || feedback <= 0 {
		return nil, fmt.Errorf("invalid PIN_FEEDBACK_DURATION: %q", os.Getenv("PIN_FEEDBACK_DURATION"))
	}
	config.PinFeedbackDuration = feedback

	if v := os.Getenv("SNAPSHOT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SNAPSHOT_ENABLED: %q", v)
		}
		config.SnapshotEnabled = enabled
	}

	switch config.DatabaseType {
	case MongoDB:
		mongoURI := os.Getenv("MONGODB_URI")
		if mongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is not set in .env file")
		}
		config.MongoURI = mongoURI
	case SQLite:
		sqlitePath := os.Getenv("SQLITE_PATH")
		if sqlitePath == "" {
			// Default to a data directory in the current directory
			sqlitePath = filepath.Join("data", fmt.Sprintf("%s.db", databaseName))
		}
		config.SQLitePath = sqlitePath
	case PostgREST:
		config.StoreURL = os.Getenv("STORE_URL")
		config.StoreAPIKey = os.Getenv("STORE_API_KEY")
		if config.StoreURL == "" {
			return nil, fmt.Errorf("STORE_URL is not set in .env file")
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_TYPE: %s", config.DatabaseType)
	}

	return config, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
