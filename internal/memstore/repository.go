// Package memstore keeps blacklist entries in process memory.
// It is used for local runs without a database and as the fake behind use case tests.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"blacklist-api/internal/domain"

	"github.com/google/uuid"
)

type Repository struct {
	mu      sync.RWMutex
	entries map[string]domain.BlacklistEntry
	nextID  uint64
	now     func() time.Time
}

type Option func(*Repository)

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func NewRepository(opts ...Option) *Repository {
	repo := &Repository{
		entries: make(map[string]domain.BlacklistEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *Repository) AddEmail(ctx context.Context, email string, appUUID uuid.UUID, blockedReason *string, ipAddress string) (*domain.BlacklistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[email]; exists {
		return nil, domain.ErrUniqueViolation
	}

	r.nextID++
	entry := domain.BlacklistEntry{
		ID:            r.nextID,
		Email:         email,
		AppUUID:       appUUID,
		BlockedReason: cloneString(blockedReason),
		IPAddress:     ipAddress,
		CreatedAt:     r.now().UTC().Truncate(time.Microsecond),
	}
	r.entries[email] = entry

	return cloneEntry(entry), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.BlacklistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneEntry(entry), nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Len returns the number of stored entries.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func cloneEntry(entry domain.BlacklistEntry) *domain.BlacklistEntry {
	entry.BlockedReason = cloneString(entry.BlockedReason)
	return &entry
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
