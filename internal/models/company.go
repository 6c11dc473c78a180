package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the business a user keeps books for. One company per user,
// provisioned on first use; the unique constraint on owner_id makes
// provisioning idempotent.
type Company struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Name      string    `db:"name"`
	GSTIN     string    `db:"gstin"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
