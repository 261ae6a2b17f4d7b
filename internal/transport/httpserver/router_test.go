package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hotel-booking-service/internal/app/service"
	"hotel-booking-service/internal/domain"
	rediscache "hotel-booking-service/internal/infra/redis"
	"hotel-booking-service/internal/transport/httpserver/handler"
	"hotel-booking-service/internal/transport/httpserver/middleware"
	"hotel-booking-service/internal/validator"
	"hotel-booking-service/pkg/locker"
)

type emptyBookings struct{}

func (emptyBookings) Create(context.Context, service.CreateReservationInput) (*domain.Reservation, error) {
	return nil, domain.ErrLockAcquisitionFailed
}
func (emptyBookings) Get(context.Context, string) (*domain.Reservation, error) {
	return nil, domain.ErrNotFound
}
func (emptyBookings) Confirm(context.Context, string) (*domain.Reservation, error) {
	return nil, domain.ErrNotFound
}
func (emptyBookings) Cancel(context.Context, string) (*domain.Reservation, error) {
	return nil, domain.ErrNotFound
}
func (emptyBookings) Reschedule(context.Context, string, time.Time, time.Time) (*domain.Reservation, error) {
	return nil, domain.ErrNotFound
}
func (emptyBookings) Delete(context.Context, string) error { return domain.ErrNotFound }

type emptyAvailability struct{}

func (emptyAvailability) CheckRoom(_ context.Context, roomID string, _ domain.Stay) (*domain.RoomAvailability, error) {
	return &domain.RoomAvailability{RoomID: roomID, Available: true}, nil
}
func (emptyAvailability) Search(context.Context, domain.AvailabilityFilter) (*domain.SearchResult, error) {
	return &domain.SearchResult{}, nil
}

type noSweep struct{}

func (noSweep) Sweep(context.Context) []service.SweepResult { return nil }

func newTestServer(t *testing.T) (*Server, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zap.NewNop()
	v := validator.New()
	bookings := emptyBookings{}

	srv := NewServer(ServerConfig{BodyLimit: 1 << 20}, Handlers{
		Reservations: handler.NewReservationHandler(bookings, v, logger),
		Availability: handler.NewAvailabilityHandler(emptyAvailability{}, v, logger),
		Admin:        handler.NewAdminHandler(bookings, locker.NewRedisLocker(client, logger), noSweep{}, nil,
			rediscache.NewAvailabilityCache(client, logger, "test", time.Minute), v, logger),
	}, map[string]middleware.ReadinessCheck{
		"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}, logger)

	return srv, mr
}

func TestServer_Routes(t *testing.T) {
	srv, mr := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/livez", "", fiber.StatusOK},
		{http.MethodGet, "/readyz", "", fiber.StatusOK},
		{http.MethodGet, "/api/v1/reservations/x", "", fiber.StatusNotFound},
		{http.MethodPost, "/api/v1/reservations/x/confirm", "", fiber.StatusNotFound},
		{http.MethodPost, "/api/v1/reservations", `{"owner_id":"g","room_id":"R1","check_in":"2024-03-01","check_out":"2024-03-02","guests":1}`, fiber.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/rooms/R1/availability?check_in=2024-03-01&check_out=2024-03-02", "", fiber.StatusOK},
		{http.MethodGet, "/api/v1/availability?check_in=2024-03-01&check_out=2024-03-02", "", fiber.StatusOK},
		{http.MethodGet, "/api/v1/admin/locks/rooms/R1", "", fiber.StatusOK},
		{http.MethodPost, "/api/v1/admin/sweep", "", fiber.StatusOK},
		{http.MethodPost, "/api/v1/admin/rooms", `{"rooms":[]}`, fiber.StatusNotFound},
		{http.MethodDelete, "/api/v1/admin/cache", "", fiber.StatusOK},
		{http.MethodGet, "/unknown", "", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := srv.App.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	mr.SetError("LOADING redis is loading the dataset")
	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_RequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reservations/x", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
