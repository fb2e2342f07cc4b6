package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"khon-reep/db"
	"khon-reep/internal/config"
	"khon-reep/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Copies locations and event logs from MongoDB into a SQLite database.
// Run with DATABASE_TYPE=mongodb and MONGODB_URI set; SQLITE_PATH picks the
// target file.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.MongoURI == "" {
		log.Fatalf("MONGODB_URI is not set in .env file. Migration cannot continue.")
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join("data", cfg.DatabaseName+".db")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("Connecting to MongoDB...")
	mongoClient, err := db.ConnectToMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	log.Println("Connecting to SQLite...")
	sqliteDB, err := db.ConnectToSQLite(sqlitePath)
	if err != nil {
		log.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		log.Fatalf("Failed to initialize SQLite schema: %v", err)
	}

	log.Println("Migrating locations...")
	migrateLocations(ctx, mongoClient, cfg.DatabaseName, db.NewSQLiteLocationRepository(sqliteDB))

	log.Println("Migrating event logs...")
	migrateEventLogs(ctx, mongoClient, cfg.DatabaseName, db.NewSQLiteEventLogRepository(sqliteDB))

	log.Println("Migration completed successfully!")
}

func migrateLocations(ctx context.Context, client *mongo.Client, dbName string, sqliteRepo *db.SQLiteLocationRepository) {
	locations, err := db.NewMongoLocationRepository(client, dbName, "locations").FindAll(ctx)
	if err != nil {
		log.Printf("Error finding locations: %v", err)
		return
	}

	imported := 0
	for _, location := range locations {
		ok, err := sqliteRepo.Import(ctx, location)
		if err != nil {
			log.Printf("Error migrating location %s: %v", location.ID, err)
			continue
		}
		if ok {
			imported++
		}
	}
	log.Printf("Migrated %d of %d locations", imported, len(locations))
}

func migrateEventLogs(ctx context.Context, client *mongo.Client, dbName string, sqliteRepo *db.SQLiteEventLogRepository) {
	collection := client.Database(dbName).Collection("event_logs")
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		log.Printf("Error finding event logs: %v", err)
		return
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var eventLog models.EventLog
		if err := cursor.Decode(&eventLog); err != nil {
			log.Printf("Error decoding event log: %v", err)
			continue
		}
		if err := sqliteRepo.Create(ctx, &eventLog); err != nil {
			log.Printf("Error migrating event log: %v", err)
			continue
		}
		count++
	}
	log.Printf("Migrated %d event logs", count)
}
