package handlers

import (
	"io"
	"strconv"

	"bizbooks/internal/dto"
	"bizbooks/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StatementHandler struct {
	statementService *service.StatementService
	logger           *zap.Logger
}

func NewStatementHandler(statementService *service.StatementService, logger *zap.Logger) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		logger:           logger,
	}
}

// Extract godoc
// @Summary Upload a bank statement and extract its transactions
// @Description Accepts a JPEG/PNG/PDF up to 10 MiB as a multipart file or as a base64 "document" field in a JSON body (data-URL prefixes are stripped), runs AI extraction, and returns an editable draft. With no document at all a marked sample draft is returned.
// @Tags statements
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file formData file false "Statement file"
// @Security Bearer
// @Success 201 {object} dto.DraftResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/statements/extract [post]
func (h *StatementHandler) Extract(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var (
		data     []byte
		fileName = "sample"
		supplied bool
	)
	if file, err := c.FormFile("file"); err == nil {
		supplied = true
		fileName = file.Filename

		src, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to open file",
			})
		}
		defer src.Close()

		data, err = io.ReadAll(src)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read file",
			})
		}
	} else {
		var req dto.ExtractRequest
		if err := c.BodyParser(&req); err == nil && req.Document != "" {
			supplied = true
			if req.FileName != "" {
				fileName = req.FileName
			}

			data, err = h.statementService.DecodeDocument(req.Document)
			if err != nil {
				return failureResponse(c, err)
			}
		}
	}

	draft, err := h.statementService.UploadAndExtract(c.Context(), userID, data, fileName, supplied)
	if err != nil {
		h.logger.Error("Extraction failed", zap.Error(err))
		return failureResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(draft)
}

// GetDraft godoc
// @Summary Get a draft statement
// @Tags statements
// @Produce json
// @Param id path string true "Draft ID"
// @Security Bearer
// @Success 200 {object} dto.DraftResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/drafts/{id} [get]
func (h *StatementHandler) GetDraft(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	draft, err := h.statementService.Draft(userID, draftID)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(draft)
}

// UpdateDraft godoc
// @Summary Update one field of a draft statement
// @Description Replaces a scalar field (account_number, bank_name, opening_balance, closing_balance) or a period bound (period_from, period_to)
// @Tags statements
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param request body dto.UpdateDraftRequest true "Field update"
// @Security Bearer
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/statements/drafts/{id} [patch]
func (h *StatementHandler) UpdateDraft(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	var req dto.UpdateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.statementService.UpdateField(userID, draftID, req.Field, req.Value); err != nil {
		return failureResponse(c, err)
	}

	draft, err := h.statementService.Draft(userID, draftID)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(draft)
}

// UpdateTransaction godoc
// @Summary Update one field of one draft transaction
// @Tags statements
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Transaction index"
// @Param request body dto.UpdateTransactionRequest true "Field update"
// @Security Bearer
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/statements/drafts/{id}/transactions/{index} [patch]
func (h *StatementHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction index",
		})
	}

	var req dto.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.statementService.UpdateTransaction(userID, draftID, index, req.Field, req.Value); err != nil {
		return failureResponse(c, err)
	}

	draft, err := h.statementService.Draft(userID, draftID)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(draft)
}

// AddTransaction godoc
// @Summary Append a blank transaction to a draft
// @Tags statements
// @Produce json
// @Param id path string true "Draft ID"
// @Security Bearer
// @Success 200 {object} dto.DraftResponse
// @Router /api/v1/statements/drafts/{id}/transactions [post]
func (h *StatementHandler) AddTransaction(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	if err := h.statementService.AddTransaction(userID, draftID); err != nil {
		return failureResponse(c, err)
	}

	draft, err := h.statementService.Draft(userID, draftID)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(draft)
}

// RemoveTransaction godoc
// @Summary Remove a transaction from a draft by index
// @Tags statements
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Transaction index"
// @Security Bearer
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/statements/drafts/{id}/transactions/{index} [delete]
func (h *StatementHandler) RemoveTransaction(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction index",
		})
	}

	if err := h.statementService.RemoveTransaction(userID, draftID, index); err != nil {
		return failureResponse(c, err)
	}

	draft, err := h.statementService.Draft(userID, draftID)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(draft)
}

// Commit godoc
// @Summary Commit a reviewed draft
// @Description Persists the statement header, its transactions, and derived ledger entries in one database transaction, then discards the draft
// @Tags statements
// @Produce json
// @Param id path string true "Draft ID"
// @Security Bearer
// @Success 201 {object} dto.CommitResponse
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/statements/drafts/{id}/commit [post]
func (h *StatementHandler) Commit(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	result, err := h.statementService.Commit(c.Context(), userID, draftID)
	if err != nil {
		h.logger.Error("Commit failed", zap.Error(err))
		return failureResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// DiscardDraft godoc
// @Summary Discard a draft without persisting it
// @Tags statements
// @Param id path string true "Draft ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/drafts/{id} [delete]
func (h *StatementHandler) DiscardDraft(c *fiber.Ctx) error {
	userID, draftID, err := h.draftIDs(c)
	if err != nil {
		return err
	}

	if err := h.statementService.DiscardDraft(userID, draftID); err != nil {
		return failureResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary List committed statements
// @Tags statements
// @Produce json
// @Param limit query int false "Limit" default(10)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.StatementResponse
// @Router /api/v1/statements [get]
func (h *StatementHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	statements, err := h.statementService.List(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list statements", zap.Error(err))
		return failureResponse(c, err)
	}
	return c.JSON(statements)
}

// Get godoc
// @Summary Get a committed statement with its transactions
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Security Bearer
// @Success 200 {object} dto.StatementResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/{id} [get]
func (h *StatementHandler) Get(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	statementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid statement ID",
		})
	}

	statement, err := h.statementService.Get(c.Context(), userID, statementID)
	if err != nil {
		return failureResponse(c, err)
	}
	return c.JSON(statement)
}

// Ledger godoc
// @Summary List ledger entries
// @Description Returns the user's derived ledger entries, newest first. Amounts are signed: credits positive, debits negative.
// @Tags statements
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.LedgerEntryResponse
// @Router /api/v1/ledger [get]
func (h *StatementHandler) Ledger(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := h.statementService.Ledger(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list ledger entries", zap.Error(err))
		return failureResponse(c, err)
	}
	return c.JSON(entries)
}

// draftIDs resolves the caller and the draft path parameter. Returned
// fiber errors are rendered by the app-level error handler.
func (h *StatementHandler) draftIDs(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}

	draftID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid draft ID")
	}

	return userID, draftID, nil
}
