package dto

type CreateBillRequest struct {
	Vendor      string  `json:"vendor" validate:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	DueDate     string  `json:"due_date" validate:"required"`
	Category    string  `json:"category"`
}

type UpdateBillStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid overdue"`
}

type BillResponse struct {
	ID          string  `json:"id"`
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
	CreatedAt   string  `json:"created_at"`
}
