package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blacklist-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// BlacklistRepository persists entries through gorm. Every call opens its own
// session bound to the caller's context; inserts run in gorm's per-statement
// transaction and roll back on failure.
type BlacklistRepository struct {
	db *gorm.DB
}

func NewBlacklistRepository(db *gorm.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

func (r *BlacklistRepository) AddEmail(ctx context.Context, email string, appUUID uuid.UUID, blockedReason *string, ipAddress string) (*domain.BlacklistEntry, error) {
	entry := domain.BlacklistEntry{
		Email:         email,
		AppUUID:       appUUID,
		BlockedReason: blockedReason,
		IPAddress:     ipAddress,
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert blacklist entry %q: %w", email, domain.ErrUniqueViolation)
		}
		return nil, fmt.Errorf("insert blacklist entry: %w", err)
	}

	return &entry, nil
}

func (r *BlacklistRepository) GetByEmail(ctx context.Context, email string) (*domain.BlacklistEntry, error) {
	var entry domain.BlacklistEntry
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query blacklist entry: %w", err)
	}

	entry.CreatedAt = entry.CreatedAt.UTC()
	return &entry, nil
}

func (r *BlacklistRepository) EmailExists(ctx context.Context, email string) (bool, error) {
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

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	// sqlite builds without error translation surface the constraint only in the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
