package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/infra/postgres/migrations"
)

// setupTestDB starts a PostgreSQL testcontainer, runs the migrations and seeds two rooms.
//
// Requires Docker. Skip with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container (is Docker running? use -short to skip): %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	rooms := NewRoomRepository(db)
	require.NoError(t, rooms.BulkUpsert(ctx, []*domain.Room{
		{ID: "R1", Number: "101", MaxOccupancy: 2, BasePrice: 100, Active: true},
		{ID: "R2", Number: "102", MaxOccupancy: 4, BasePrice: 180, Active: false},
	}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newReservation(roomID, in, out string, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		RoomID:      roomID,
		OwnerID:     "owner-1",
		CheckIn:     day(in),
		CheckOut:    day(out),
		Guests:      2,
		TotalAmount: 300,
		Status:      status,
	}
}

func TestReservationRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := newReservation("R1", "2024-03-01", "2024-03-04", domain.StatusPending)
	require.NoError(t, repo.Create(ctx, res))
	assert.NotEmpty(t, res.ID, "ID should be generated")
	assert.False(t, res.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "R1", got.RoomID)
	assert.Equal(t, 300.0, got.TotalAmount)
	assert.True(t, got.CheckIn.Equal(day("2024-03-01")))
	assert.Equal(t, domain.StatusPending, got.Status)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationRepository_CreateForRemoteCatalogRoom(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	// Rooms served by the HTTP catalog have no local row
	res := newReservation("remote-301", "2024-03-01", "2024-03-04", domain.StatusPending)
	require.NoError(t, repo.Create(ctx, res))

	found, err := repo.Find(ctx, domain.ReservationFilter{RoomID: "remote-301"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, res.ID, found[0].ID)

	var overlapErr *domain.BookingConflictError
	err = repo.Create(ctx, newReservation("remote-301", "2024-03-02", "2024-03-05", domain.StatusPending))
	assert.ErrorAs(t, err, &overlapErr, "the overlap constraint still applies")
}

func TestReservationRepository_FindOverlaps(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	active := newReservation("R1", "2024-02-01", "2024-02-05", domain.StatusConfirmed)
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, newReservation("R1", "2024-02-02", "2024-02-04", domain.StatusCancelled)))

	find := func(in, out, exclude string) []*domain.Reservation {
		stay := domain.NewStay(day(in), day(out))
		found, err := repo.Find(ctx, domain.ReservationFilter{
			RoomID:    "R1",
			Statuses:  domain.ActiveStatuses,
			Overlaps:  &stay,
			ExcludeID: exclude,
		})
		require.NoError(t, err)
		return found
	}

	overlapping := find("2024-02-03", "2024-02-06", "")
	require.Len(t, overlapping, 1)
	assert.Equal(t, active.ID, overlapping[0].ID)

	assert.Empty(t, find("2024-02-05", "2024-02-08", ""), "touching boundary is not an overlap")
	assert.Empty(t, find("2024-02-03", "2024-02-06", active.ID))
}

func TestReservationRepository_FindDue(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReservation("R1", "2024-02-01", "2024-02-05", domain.StatusConfirmed)))
	require.NoError(t, repo.Create(ctx, newReservation("R1", "2024-02-10", "2024-02-12", domain.StatusConfirmed)))

	due, err := repo.Find(ctx, domain.ReservationFilter{
		Statuses:       []domain.ReservationStatus{domain.StatusConfirmed},
		CheckOutBefore: day("2024-02-06"),
		Limit:          10,
	})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.True(t, due[0].CheckOut.Equal(day("2024-02-05")))
}

func TestReservationRepository_UpdateStatusGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := newReservation("R1", "2024-03-01", "2024-03-04", domain.StatusPending)
	require.NoError(t, repo.Create(ctx, res))

	res.Status = domain.StatusConfirmed
	require.NoError(t, repo.Update(ctx, res, domain.StatusPending))

	stale := *res
	stale.Status = domain.StatusCancelled
	err := repo.Update(ctx, &stale, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	got, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	missing := newReservation("R1", "2024-03-01", "2024-03-04", domain.StatusConfirmed)
	missing.ID = "00000000-0000-0000-0000-000000000000"
	assert.ErrorIs(t, repo.Update(ctx, missing, domain.StatusPending), domain.ErrNotFound)
}

func TestReservationRepository_ExclusionConstraint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	first := newReservation("R1", "2024-02-01", "2024-02-05", domain.StatusPending)
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newReservation("R1", "2024-02-03", "2024-02-06", domain.StatusPending))
	assert.True(t, domain.IsConflict(err), "expected a conflict, got %v", err)

	assert.NoError(t, repo.Create(ctx, newReservation("R1", "2024-02-05", "2024-02-08", domain.StatusPending)),
		"touching boundary is allowed")

	assert.NoError(t, repo.Create(ctx, newReservation("R1", "2024-02-02", "2024-02-03", domain.StatusCancelled)),
		"inactive reservations are not constrained")

	// Cancelling frees the range.
	first.Status = domain.StatusCancelled
	require.NoError(t, repo.Update(ctx, first, domain.StatusPending))
	assert.NoError(t, repo.Create(ctx, newReservation("R1", "2024-02-01", "2024-02-04", domain.StatusPending)))
}

func TestReservationRepository_ConcurrentOverlappingInserts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newReservation("R1", "2024-04-01", "2024-04-03", domain.StatusPending))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				assert.True(t, domain.IsConflict(err), "unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestReservationRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := newReservation("R1", "2024-03-01", "2024-03-04", domain.StatusPending)
	require.NoError(t, repo.Create(ctx, res))

	require.NoError(t, repo.Delete(ctx, res.ID))
	assert.ErrorIs(t, repo.Delete(ctx, res.ID), domain.ErrNotFound)
}

func TestRoomRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(db)
	ctx := context.Background()

	room, err := repo.GetByID(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 2, room.MaxOccupancy)
	assert.Equal(t, 100.0, room.BasePrice)

	_, err = repo.GetByID(ctx, "R404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "R1", active[0].ID)

	require.NoError(t, repo.BulkUpsert(ctx, []*domain.Room{
		{ID: "R2", Number: "102", MaxOccupancy: 4, BasePrice: 200, Active: true},
	}))
	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
