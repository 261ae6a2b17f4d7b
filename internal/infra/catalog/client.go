package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
)

// API paths of the room inventory service.
const (
	RoomsEndpoint = "/api/rooms"
	RoomEndpoint  = "/api/rooms/{id}"
)

// Client implements domain.RoomCatalog against the room inventory API.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new catalog client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	// A missing room is an answer, not an outage.
	isSuccessful := func(err error) bool {
		return err == nil || errors.Is(err, domain.ErrNotFound)
	}

	return &Client{
		client: newRestyClient(cfg),
		cb:     newCircuitBreaker[*resty.Response]("room_catalog", cfg.CB, isSuccessful, logger),
		logger: logger,
	}
}

// GetByID fetches one room.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var item RoomItem
		r, err := c.client.R().
			SetContext(ctx).
			SetPathParam("id", id).
			SetResult(&item).
			Get(RoomEndpoint)
		if err != nil {
			return nil, err
		}
		if r.StatusCode() == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		if r.IsError() {
			return nil, fmt.Errorf("room catalog returned status %d", r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		c.logger.Warn("room catalog fetch failed",
			zap.String("room_id", id),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching room %s: %w", id, err)
	}

	item := resp.Result().(*RoomItem)
	return item.ToDomain(), nil
}

// ListActive fetches every active room.
func (c *Client) ListActive(ctx context.Context) ([]*domain.Room, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result ListResponse
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParam("status", "active").
			SetResult(&result).
			Get(RoomsEndpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("room catalog returned status %d", r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("room catalog list failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("listing rooms: %w", err)
	}

	result := resp.Result().(*ListResponse)
	rooms := make([]*domain.Room, 0, len(result.Rooms))
	for i := range result.Rooms {
		room := result.Rooms[i].ToDomain()
		// Rooms the API returns despite the filter are dropped.
		if room.Active {
			rooms = append(rooms, room)
		}
	}

	c.logger.Debug("room catalog list completed", zap.Int("count", len(rooms)))

	return rooms, nil
}

// HealthCheck verifies the catalog is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
