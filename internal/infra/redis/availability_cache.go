package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
)

// DefaultTTL is used when Set is called with a non-positive ttl and no default was configured.
const DefaultTTL = 5 * time.Minute

const scanBatch = 100

// AvailabilityCache implements domain.AvailabilityCache on Redis.
// Every read failure is logged and reported as a miss.
type AvailabilityCache struct {
	client     redis.UniversalClient
	logger     *zap.Logger
	keyPrefix  string
	defaultTTL time.Duration
}

type cachedVerdict struct {
	IsAvailable bool      `json:"is_available"`
	WrittenAt   time.Time `json:"written_at"`
}

type cachedSearch struct {
	RoomIDs   []string  `json:"room_ids"`
	WrittenAt time.Time `json:"written_at"`
}

// NewAvailabilityCache creates a cache namespaced under keyPrefix.
func NewAvailabilityCache(client redis.UniversalClient, logger *zap.Logger, keyPrefix string, defaultTTL time.Duration) *AvailabilityCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &AvailabilityCache{
		client:     client,
		logger:     logger,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached verdict for a room and stay under the room's current generation.
func (c *AvailabilityCache) Get(ctx context.Context, roomID string, stay domain.Stay) (bool, domain.CacheVersion, bool) {
	version := c.generation(ctx, c.roomGenerationKey(roomID))
	if version == domain.NoCacheVersion {
		return false, version, false
	}

	var v cachedVerdict
	if !c.getJSON(ctx, c.availabilityKey(roomID, version, stay), &v) {
		return false, version, false
	}

	c.logger.Debug("availability cache hit",
		zap.String("room_id", roomID),
		zap.Bool("available", v.IsAvailable),
	)

	return v.IsAvailable, version, true
}

// Set stores a verdict for a room and stay under version.
func (c *AvailabilityCache) Set(ctx context.Context, roomID string, version domain.CacheVersion, stay domain.Stay, available bool, ttl time.Duration) error {
	if version == domain.NoCacheVersion {
		return nil
	}

	key := c.availabilityKey(roomID, version, stay)
	return c.setJSON(ctx, key, cachedVerdict{IsAvailable: available, WrittenAt: time.Now().UTC()}, ttl)
}

// GetSearch returns the room IDs cached for a broad availability search.
func (c *AvailabilityCache) GetSearch(ctx context.Context, filter domain.AvailabilityFilter) ([]string, domain.CacheVersion, bool) {
	version := c.generation(ctx, c.searchGenerationKey())
	if version == domain.NoCacheVersion {
		return nil, version, false
	}

	var s cachedSearch
	if !c.getJSON(ctx, c.searchKey(version, filter), &s) {
		return nil, version, false
	}
	return s.RoomIDs, version, true
}

// SetSearch stores the room IDs of a broad availability search under version.
func (c *AvailabilityCache) SetSearch(ctx context.Context, filter domain.AvailabilityFilter, version domain.CacheVersion, roomIDs []string, ttl time.Duration) error {
	if version == domain.NoCacheVersion {
		return nil
	}
	if roomIDs == nil {
		roomIDs = []string{}
	}
	return c.setJSON(ctx, c.searchKey(version, filter), cachedSearch{RoomIDs: roomIDs, WrittenAt: time.Now().UTC()}, ttl)
}

// Invalidate bumps the generation of roomID and of the search namespace, then removes
// the entries written so far. Any broad search may have included the room.
// Every step is attempted even when an earlier one fails.
func (c *AvailabilityCache) Invalidate(ctx context.Context, roomID string) error {
	var errs []error

	// Bump generations first: verdicts still being computed land under the old ones
	for _, key := range []string{c.roomGenerationKey(roomID), c.searchGenerationKey()} {
		if err := c.client.Incr(ctx, key).Err(); err != nil {
			errs = append(errs, fmt.Errorf("bumping %s: %w", key, err))
		}
	}

	// Drop entries of earlier generations
	deleted := 0
	for _, pattern := range []string{c.availabilityPattern(roomID), c.searchPattern()} {
		n, err := c.deleteMatching(ctx, pattern)
		deleted += n
		if err != nil {
			errs = append(errs, fmt.Errorf("invalidating %s: %w", pattern, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		c.logger.Warn("cache degraded",
			zap.String("op", "invalidate"),
			zap.String("room_id", roomID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Debug("availability cache invalidated",
		zap.String("room_id", roomID),
		zap.Int("key_count", deleted),
	)

	return nil
}

// Clear removes every verdict and search result. Generation counters are kept so
// an entry written under an old generation never becomes readable again.
func (c *AvailabilityCache) Clear(ctx context.Context) (int, error) {
	var (
		errs    []error
		deleted int
	)
	for _, pattern := range []string{c.keyPrefix + ":availability:*", c.searchPattern()} {
		n, err := c.deleteMatching(ctx, pattern)
		deleted += n
		if err != nil {
			errs = append(errs, fmt.Errorf("clearing %s: %w", pattern, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		c.logger.Error("cache clear failed", zap.Int("key_count", deleted), zap.Error(err))
		return deleted, err
	}

	c.logger.Info("cache cleared", zap.Int("key_count", deleted))
	return deleted, nil
}

// generation reads a generation counter. A missing counter is generation 0.
func (c *AvailabilityCache) generation(ctx context.Context, key string) domain.CacheVersion {
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		c.logger.Warn("cache degraded",
			zap.String("op", "generation"),
			zap.String("key", key),
			zap.Error(err),
		)
		return domain.NoCacheVersion
	}

	return domain.CacheVersion(n)
}

func (c *AvailabilityCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}

	return len(keys), nil
}

func (c *AvailabilityCache) getJSON(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("cache degraded",
			zap.String("op", "get"),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("discarding unreadable cache entry",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}

	return true
}

func (c *AvailabilityCache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache degraded",
			zap.String("op", "set"),
			zap.String("key", key),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
		return err
	}

	c.logger.Debug("cache set",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Duration("ttl", ttl),
	)

	return nil
}

func (c *AvailabilityCache) availabilityKey(roomID string, version domain.CacheVersion, stay domain.Stay) string {
	return c.keyPrefix + ":availability:" + roomID + ":g" + strconv.FormatInt(int64(version), 10) + ":" +
		stay.CheckIn.UTC().Format(time.RFC3339) + ":" +
		stay.CheckOut.UTC().Format(time.RFC3339)
}

func (c *AvailabilityCache) searchKey(version domain.CacheVersion, filter domain.AvailabilityFilter) string {
	return c.keyPrefix + ":search:g" + strconv.FormatInt(int64(version), 10) + ":" +
		filter.Stay.CheckIn.UTC().Format(time.RFC3339) + ":" +
		filter.Stay.CheckOut.UTC().Format(time.RFC3339) + ":" +
		strconv.Itoa(filter.Guests)
}

func (c *AvailabilityCache) availabilityPattern(roomID string) string {
	return c.keyPrefix + ":availability:" + roomID + ":*"
}

func (c *AvailabilityCache) searchPattern() string {
	return c.keyPrefix + ":search:*"
}

func (c *AvailabilityCache) roomGenerationKey(roomID string) string {
	return c.keyPrefix + ":gen:room:" + roomID
}

func (c *AvailabilityCache) searchGenerationKey() string {
	return c.keyPrefix + ":gen:search"
}
