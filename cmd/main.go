package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"khon-reep/db"
	"khon-reep/internal/broadcast"
	"khon-reep/internal/catalog"
	"khon-reep/internal/config"
	"khon-reep/internal/eventlog"
	"khon-reep/internal/ipaddress"
	"khon-reep/internal/location"
	"khon-reep/internal/mapview"
	"khon-reep/internal/pin"
	"khon-reep/internal/session"
	"khon-reep/internal/snapshot"
	"khon-reep/internal/web"
	"khon-reep/middleware"

	"go.mongodb.org/mongo-driver/mongo"
)

// Global loggers for different output streams
var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

const (
	sessionSweepInterval = 10 * time.Minute
	sessionMaxIdle       = 2 * time.Hour
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			errorLogger.Printf("FATAL PANIC in main(): %v", r)
			errorLogger.Printf("Stack trace: %s", debug.Stack())
			os.Exit(2)
		}
	}()

	infoLogger.Printf("Starting khon-reep - Process ID: %d", os.Getpid())
	infoLogger.Printf("Runtime: %s/%s, Go version: %s", runtime.GOOS, runtime.GOARCH, runtime.Version())

	cfg, err := config.LoadConfig()
	if err != nil {
		errorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	repoFactory, dbManager, closeStore := openStore(cfg)
	defer closeStore()

	locationRepo, err := repoFactory.NewLocationRepository()
	if err != nil {
		errorLogger.Fatalf("Failed to create location repository: %v", err)
	}
	eventLogService := eventlog.NewEventLogService(repoFactory.NewEventLogRepository(), dbManager)

	incidentCatalog, err := catalog.Load(cfg.IncidentCatalogPath)
	if err != nil {
		errorLogger.Fatalf("Failed to load incident catalog: %v", err)
	}

	var publisher broadcast.Publisher = broadcast.NopPublisher{}
	if cfg.NSQAddr != "" {
		nsqPublisher, err := broadcast.NewNSQPublisher(cfg.NSQAddr, cfg.NSQTopic)
		if err != nil {
			errorLogger.Printf("Warning: broadcasting disabled: %v", err)
		} else {
			publisher = nsqPublisher
		}
	}
	defer publisher.Stop()

	locationService := location.NewLocationService(locationRepo, dbManager, eventLogService, publisher)
	ipService := ipaddress.NewService(cfg.IPLookupURL, nil)
	picker := pin.NewPicker(locationService, ipService, eventLogService)

	sessionManager := session.NewManager(func() *session.Coordinator {
		view := mapview.NewMapView(incidentCatalog, mapview.NewSceneSurfaceFactory(cfg.TileURL))
		return session.NewCoordinator(locationService, view, pin.NewFeedback(cfg.PinFeedbackDuration))
	})
	defer sessionManager.Close()

	var snapshots *snapshot.Service
	if cfg.SnapshotEnabled {
		snapshots = snapshot.NewService(30*time.Second, time.Minute)
		infoLogger.Println("Map snapshots enabled")
	}

	webHandler := web.NewWebHandler(sessionManager, picker, incidentCatalog, locationService, eventLogService, snapshots, cfg)
	router := webHandler.SetupRoutes()
	handler := middleware.LoggingMiddleware(middleware.SetupCORS("")(router))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessionManager.RunJanitor(ctx, sessionSweepInterval, sessionMaxIdle)

	go func() {
		infoLogger.Printf("Server is starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Fatalf("Server ListenAndServe error: %v", err)
		}
		infoLogger.Println("Server ListenAndServe has exited normally")
	}()

	waitForShutdown(server, cancel)
}

// openStore connects the configured backend. SQLite writes go through a
// DBManager; the other backends take concurrent writes directly.
func openStore(cfg *config.Config) (*db.RepositoryFactory, *db.DBManager, func()) {
	switch cfg.DatabaseType {
	case config.MongoDB:
		infoLogger.Println("Using MongoDB database")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := db.ConnectToMongo(ctx, cfg.MongoURI)
		if err != nil {
			errorLogger.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		if err := db.InitializeMongoIndexes(ctx, client, cfg.DatabaseName); err != nil {
			errorLogger.Printf("Warning: Failed to create MongoDB indexes: %v", err)
		}
		return db.NewRepositoryFactory(nil, client, cfg.DatabaseName), nil, func() {
			disconnectMongo(client)
		}

	case config.PostgREST:
		infoLogger.Printf("Using hosted store at %s", cfg.StoreURL)
		factory := db.NewRepositoryFactory(nil, nil, cfg.DatabaseName).
			WithRemoteStore(cfg.StoreURL, cfg.StoreAPIKey)
		return factory, nil, func() {}

	default:
		infoLogger.Println("Using SQLite database")
		sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
		if err != nil {
			errorLogger.Fatalf("Failed to connect to SQLite: %v", err)
		}
		if err := db.InitializeSchema(sqliteDB); err != nil {
			errorLogger.Fatalf("Failed to initialize database schema: %v", err)
		}
		dbManager := db.NewDBManager()
		return db.NewRepositoryFactory(sqliteDB, nil, cfg.DatabaseName), dbManager, func() {
			dbManager.Stop()
			closeSQLite(sqliteDB)
		}
	}
}

func closeSQLite(sqliteDB *sql.DB) {
	if err := sqliteDB.Close(); err != nil {
		errorLogger.Printf("Error closing SQLite: %v", err)
	}
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		errorLogger.Printf("Error disconnecting MongoDB: %v", err)
	}
}

func waitForShutdown(server *http.Server, stopBackground context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	infoLogger.Println("Server is running and ready to accept connections...")
	sig := <-stop
	infoLogger.Printf("Received shutdown signal: %v", sig)

	// Signal background services to stop
	stopBackground()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	infoLogger.Println("Shutting down the server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		errorLogger.Printf("Server Shutdown error: %v", err)
	}
	infoLogger.Println("[SUCCESS] Services stopped")
}
