package entity

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is one append-only ledger entry recording that a user marked their
// daily wird at a given instant.
type CheckIn struct {
	ID          uuid.UUID
	UserID      int64
	CheckInTime time.Time
	Completed   bool
	CreatedAt   time.Time
}
