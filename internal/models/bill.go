package models

import (
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

type Bill struct {
	ID          uuid.UUID  `db:"id"`
	UserID      uuid.UUID  `db:"user_id"`
	CompanyID   uuid.UUID  `db:"company_id"`
	Vendor      string     `db:"vendor"`
	Description string     `db:"description"`
	Amount      float64    `db:"amount"`
	DueDate     time.Time  `db:"due_date"`
	Status      BillStatus `db:"status"`
	Category    Category   `db:"category"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
