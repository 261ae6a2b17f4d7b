package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel-booking-service/internal/domain"
)

// memReservations is an in-memory ReservationRepository.
type memReservations struct {
	mu    sync.Mutex
	items map[string]*domain.Reservation
	// findErr, when set, fails every Find.
	findErr error
}

func newMemReservations() *memReservations {
	return &memReservations{items: make(map[string]*domain.Reservation)}
}

func (m *memReservations) Create(_ context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *memReservations) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReservations) Find(_ context.Context, f domain.ReservationFilter) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []*domain.Reservation
	for _, r := range m.items {
		if f.RoomID != "" && r.RoomID != f.RoomID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, r.Status) {
			continue
		}
		if f.Overlaps != nil && !r.Stay().Overlaps(*f.Overlaps) {
			continue
		}
		if f.ExcludeID != "" && r.ID == f.ExcludeID {
			continue
		}
		if !f.CheckOutBefore.IsZero() && !r.CheckOut.Before(f.CheckOutBefore) {
			continue
		}
		if !f.CreatedBefore.IsZero() && !r.CreatedAt.Before(f.CreatedBefore) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memReservations) Update(_ context.Context, r *domain.Reservation, expected domain.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != expected {
		return domain.ErrConcurrentUpdate
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *memReservations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memReservations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func hasStatus(statuses []domain.ReservationStatus, s domain.ReservationStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

// memRooms is an in-memory RoomCatalog.
type memRooms struct {
	rooms []*domain.Room
}

func (m *memRooms) GetByID(_ context.Context, id string) (*domain.Room, error) {
	for _, r := range m.rooms {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRooms) ListActive(_ context.Context) ([]*domain.Room, error) {
	var out []*domain.Room
	for _, r := range m.rooms {
		if r.Active {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// brokenCache fails every operation, like a cache whose store is down.
type brokenCache struct{}

var errCacheDown = errors.New("cache store unreachable")

func (brokenCache) Get(context.Context, string, domain.Stay) (bool, domain.CacheVersion, bool) {
	return false, domain.NoCacheVersion, false
}
func (brokenCache) Set(context.Context, string, domain.CacheVersion, domain.Stay, bool, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Invalidate(context.Context, string) error { return errCacheDown }
func (brokenCache) GetSearch(context.Context, domain.AvailabilityFilter) ([]string, domain.CacheVersion, bool) {
	return nil, domain.NoCacheVersion, false
}
func (brokenCache) SetSearch(context.Context, domain.AvailabilityFilter, domain.CacheVersion, []string, time.Duration) error {
	return errCacheDown
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// interleavedReservations runs afterFind once each Find has read its snapshot,
// letting a test commit a write between a reader's query and its cache fill.
type interleavedReservations struct {
	*memReservations
	afterFind func()
}

func (r *interleavedReservations) Find(ctx context.Context, f domain.ReservationFilter) ([]*domain.Reservation, error) {
	out, err := r.memReservations.Find(ctx, f)
	r.afterFind()
	return out, err
}
