package db_test

import (
	"context"
	"testing"
	"time"

	"khon-reep/db"
	"khon-reep/models"
	"khon-reep/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteLocationRepository(t *testing.T) {
	testDB, cleanup := testutils.SetupTestDatabase(t)
	defer cleanup()
	repo := db.NewSQLiteLocationRepository(testDB)
	ctx := context.Background()

	t.Run("EmptyStore", func(t *testing.T) {
		locations, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, locations)
		assert.Empty(t, locations)
	})

	t.Run("CreateAssignsIDAndTimestamps", func(t *testing.T) {
		input := testutils.CreateTestLocationOfType(models.WrongDirection, 13.7563, 100.5018)
		input.ID = ""
		input.CreatedAt = nil

		created, err := repo.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.NotNil(t, created.CreatedAt)
		assert.Equal(t, models.RecordStatusConfirmed, created.Status)
		assert.Empty(t, input.ID, "input is not modified")
	})

	t.Run("FindAllReturnsEveryRecordOldestFirst", func(t *testing.T) {
		second, err := repo.Create(ctx, testutils.CreateTestLocationOfType(models.TrafficLightBlindness, 18.79, 98.98))
		require.NoError(t, err)

		locations, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, locations, 2)
		assert.Equal(t, models.WrongDirection, locations[0].Type)
		assert.Equal(t, second.ID, locations[1].ID)
		assert.Equal(t, 18.79, locations[1].Latitude)
		assert.Equal(t, "Mozilla/5.0 (test)", locations[1].UserAgent)
		assert.Equal(t, "203.0.113.1", locations[1].IPAddress)
	})

	t.Run("SchemaRejectsUnknownType", func(t *testing.T) {
		_, err := repo.Create(ctx, testutils.CreateTestLocationOfType("POTHOLE", 1, 1))
		assert.Error(t, err)
	})

	t.Run("ImportKeepsIDAndSkipsDuplicates", func(t *testing.T) {
		loc := testutils.CreateTestLocation()
		created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		loc.CreatedAt = &created

		imported, err := repo.Import(ctx, loc)
		require.NoError(t, err)
		assert.True(t, imported)

		imported, err = repo.Import(ctx, loc)
		require.NoError(t, err)
		assert.False(t, imported)

		locations, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, locations, 3)
		assert.Equal(t, loc.ID, locations[0].ID, "imported record sorts by its original timestamp")
	})

	t.Run("ImportRequiresID", func(t *testing.T) {
		loc := testutils.CreateTestLocation()
		loc.ID = ""
		_, err := repo.Import(ctx, loc)
		assert.Error(t, err)
	})
}

func TestSQLiteEventLogRepository(t *testing.T) {
	testDB, cleanup := testutils.SetupTestDatabase(t)
	defer cleanup()
	repo := db.NewSQLiteEventLogRepository(testDB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, testutils.CreateTestEventLog("loc-1")))
	}
	last := testutils.CreateTestEventLog("loc-2")
	last.Type = models.LocationsFetched
	require.NoError(t, repo.Create(ctx, last))

	logs, err := repo.FindLatest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LocationsFetched, logs[0].Type)
	require.NotNil(t, logs[0].LocationID)
	assert.Equal(t, "loc-2", *logs[0].LocationID)

	t.Run("CancelledContext", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		logs, err := repo.FindLatest(cancelled, 10)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, logs)
	})
}

func TestMemoryEventLogRepository(t *testing.T) {
	repo := db.NewMemoryEventLogRepository(3)
	ctx := context.Background()

	for _, eventType := range []models.EEventLogType{models.PinSubmitted, models.PinRejected, models.PinSaveFailed, models.LocationsFetched} {
		require.NoError(t, repo.Create(ctx, &models.EventLog{Type: eventType}))
	}

	logs, err := repo.FindLatest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3, "ring keeps only the newest entries")
	assert.Equal(t, models.LocationsFetched, logs[0].Type)
	assert.Equal(t, models.PinRejected, logs[2].Type)
	assert.NotNil(t, logs[0].CreatedAt)
}

func TestRepositoryFactory(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		factory, cleanup := testutils.SetupTestRepositoryFactory(t)
		defer cleanup()

		repo, err := factory.NewLocationRepository()
		require.NoError(t, err)
		assert.IsType(t, &db.SQLiteLocationRepository{}, repo)
		assert.IsType(t, &db.SQLiteEventLogRepository{}, factory.NewEventLogRepository())
	})

	t.Run("RemoteStore", func(t *testing.T) {
		factory := db.NewRepositoryFactory(nil, nil, "khonreep").WithRemoteStore("https://store.example", "key")
		repo, err := factory.NewLocationRepository()
		require.NoError(t, err)
		assert.IsType(t, &db.PostgRESTLocationRepository{}, repo)
		assert.IsType(t, &db.MemoryEventLogRepository{}, factory.NewEventLogRepository())
	})

	t.Run("NoBackend", func(t *testing.T) {
		_, err := db.NewRepositoryFactory(nil, nil, "khonreep").NewLocationRepository()
		assert.ErrorIs(t, err, db.ErrNoBackend)
	})
}
