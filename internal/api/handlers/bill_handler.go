package handlers

import (
	"bizbooks/internal/dto"
	"bizbooks/internal/models"
	"bizbooks/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BillHandler struct {
	billService *service.BillService
	logger      *zap.Logger
}

func NewBillHandler(billService *service.BillService, logger *zap.Logger) *BillHandler {
	return &BillHandler{
		billService: billService,
		logger:      logger,
	}
}

// Create godoc
// @Summary Record a bill
// @Description Records a payable bill against the user's company
// @Tags bills
// @Accept json
// @Produce json
// @Param request body dto.CreateBillRequest true "Bill"
// @Security Bearer
// @Success 201 {object} dto.BillResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/bills [post]
func (h *BillHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.CreateBillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Vendor == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Vendor and a positive amount are required",
		})
	}

	bill, err := h.billService.Create(c.Context(), userID, &req)
	if err != nil {
		h.logger.Error("Failed to create bill", zap.Error(err))
		return failureResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(bill)
}

// List godoc
// @Summary List bills
// @Tags bills
// @Produce json
// @Param limit query int false "Limit" default(10)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.BillResponse
// @Router /api/v1/bills [get]
func (h *BillHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	bills, err := h.billService.List(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list bills", zap.Error(err))
		return failureResponse(c, err)
	}
	return c.JSON(bills)
}

// UpdateStatus godoc
// @Summary Update a bill's status
// @Description Moves a bill between pending, paid and overdue. Marking a bill paid records the payment in the ledger.
// @Tags bills
// @Accept json
// @Produce json
// @Param id path string true "Bill ID"
// @Param request body dto.UpdateBillStatusRequest true "New status"
// @Security Bearer
// @Success 200 {object} dto.BillResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/bills/{id}/status [patch]
func (h *BillHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	billID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid bill ID",
		})
	}

	var req dto.UpdateBillStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	status := models.BillStatus(req.Status)
	switch status {
	case models.BillStatusPending, models.BillStatusPaid, models.BillStatusOverdue:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status must be pending, paid or overdue",
		})
	}

	bill, err := h.billService.UpdateStatus(c.Context(), userID, billID, status)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(bill)
}
