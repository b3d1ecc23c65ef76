package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountID string

// MintAccount is the external source of deposits; it has no balance of its own.
const MintAccount AccountID = "mint"

type Transfer struct {
	ID          uuid.UUID
	From        AccountID
	To          AccountID
	AmountCents int64
	Reason      string
	CreatedAt   time.Time
}
