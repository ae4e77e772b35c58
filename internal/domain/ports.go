package domain

import (
	"context"

	"github.com/google/uuid"
)

// BlacklistRepository is the storage port the use cases depend on.
//
// AddEmail must fail with an error matching ErrUniqueViolation when the email
// is already stored. GetByEmail returns ErrNotFound when nothing matches.
// EmailExists reports true exactly when GetByEmail would return a record.
type BlacklistRepository interface {
	AddEmail(ctx context.Context, email string, appUUID uuid.UUID, blockedReason *string, ipAddress string) (*BlacklistEntry, error)
	GetByEmail(ctx context.Context, email string) (*BlacklistEntry, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
