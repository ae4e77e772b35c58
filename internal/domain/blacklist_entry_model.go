package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxBlockedReasonLength is the longest reason, in characters, a record may carry.
const MaxBlockedReasonLength = 255

// BlacklistEntry marks one email address as blocked. Records are created once and never mutated.
type BlacklistEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Email   string    `gorm:"size:320;uniqueIndex;not null"`
	AppUUID uuid.UUID `gorm:"column:app_uuid;type:uuid;not null"`

	// BlockedReason is nil when no reason was recorded.
	BlockedReason *string `gorm:"size:255"`

	// IPAddress is resolved from the request that created the entry, never from the payload.
	IPAddress string `gorm:"size:255;not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (BlacklistEntry) TableName() string {
	return "blacklists"
}

// BeforeCreate stamps the creation time from the server clock in UTC.
// Microsecond truncation keeps the returned value identical to what postgres stores.
func (entry *BlacklistEntry) BeforeCreate(_ *gorm.DB) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	} else {
		entry.CreatedAt = entry.CreatedAt.UTC()
	}
	return nil
}

// Reason returns the blocked reason or an empty string when none was recorded.
func (entry *BlacklistEntry) Reason() string {
	if entry == nil || entry.BlockedReason == nil {
		return ""
	}
	return *entry.BlockedReason
}
