// Package cache decorates a blacklist repository with a Redis read-through cache.
//
// Entries are immutable and never removed, so a cached positive lookup can
// never go stale. Misses are not cached, which keeps a fresh add visible on
// the next check. Redis is best effort: its failures are logged and the
// request falls through to the wrapped repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"blacklist-api/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blacklist:email:"

type Repository struct {
	next   domain.BlacklistRepository
	client *redis.Client
	ttl    time.Duration
}

func NewRepository(next domain.BlacklistRepository, client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{next: next, client: client, ttl: ttl}
}

type cachedEntry struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	AppUUID       uuid.UUID `json:"app_uuid"`
	BlockedReason *string   `json:"blocked_reason"`
	IPAddress     string    `json:"ip_address"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *Repository) AddEmail(ctx context.Context, email string, appUUID uuid.UUID, blockedReason *string, ipAddress string) (*domain.BlacklistEntry, error) {
	entry, err := r.next.AddEmail(ctx, email, appUUID, blockedReason, ipAddress)
	if err != nil {
		return nil, err
	}
	r.store(ctx, entry)
	return entry, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.BlacklistEntry, error) {
	if entry, ok := r.load(ctx, email); ok {
		return entry, nil
	}

	entry, err := r.next.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	r.store(ctx, entry)
	return entry, nil
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

func (r *Repository) load(ctx context.Context, email string) (*domain.BlacklistEntry, bool) {
	raw, err := r.client.Get(ctx, keyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Warn("blacklist cache read failed", "email", email, "error", err)
		return nil, false
	}

	var cached cachedEntry
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Warn("blacklist cache entry corrupt", "email", email, "error", err)
		return nil, false
	}

	return &domain.BlacklistEntry{
		ID:            cached.ID,
		Email:         cached.Email,
		AppUUID:       cached.AppUUID,
		BlockedReason: cached.BlockedReason,
		IPAddress:     cached.IPAddress,
		CreatedAt:     cached.CreatedAt.UTC(),
	}, true
}

func (r *Repository) store(ctx context.Context, entry *domain.BlacklistEntry) {
	if entry == nil {
		return
	}

	payload, err := json.Marshal(cachedEntry{
		ID:            entry.ID,
		Email:         entry.Email,
		AppUUID:       entry.AppUUID,
		BlockedReason: entry.BlockedReason,
		IPAddress:     entry.IPAddress,
		CreatedAt:     entry.CreatedAt,
	})
	if err != nil {
		log.Warn("blacklist cache encode failed", "email", entry.Email, "error", err)
		return
	}

	if err := r.client.Set(ctx, keyPrefix+entry.Email, payload, r.ttl).Err(); err != nil {
		log.Warn("blacklist cache write failed", "email", entry.Email, "error", err)
	}
}
