package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/moneta-app/moneta-backend/internal/service"
	"github.com/moneta-app/moneta-backend/internal/view"
	"github.com/moneta-app/moneta-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// dateLayout is the accepted format for from/to query parameters
const dateLayout = "2006-01-02"

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	categoryService    *service.CategoryService
	accountService     *service.AccountService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, categoryService *service.CategoryService, accountService *service.AccountService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		categoryService:    categoryService,
		accountService:     accountService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	CategoryID   string  `json:"categoryId"`
	AccountID    string  `json:"accountId"`
	Amount       string  `json:"amount"`
	OccurredAt   string  `json:"occurredAt"`
	MerchantName *string `json:"merchantName,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// UpdateTransactionRequest represents the update transaction request body
type UpdateTransactionRequest struct {
	CategoryID   *string `json:"categoryId,omitempty"`
	AccountID    *string `json:"accountId,omitempty"`
	Amount       *string `json:"amount,omitempty"`
	OccurredAt   *string `json:"occurredAt,omitempty"`
	MerchantName *string `json:"merchantName,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// SummaryResponse represents the period summary API response
type SummaryResponse struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Balance      string `json:"balance"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", []ValidationError{
			{Field: "categoryId", Message: "Must be a valid UUID"},
		})
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return NewValidationError(c, "Invalid account ID", []ValidationError{
			{Field: "accountId", Message: "Must be a valid UUID"},
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	occurredAt, err := parseDateTime(req.OccurredAt)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "occurredAt", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"},
		})
	}

	input := service.CreateTransactionInput{
		CategoryID:   categoryID,
		AccountID:    accountID,
		Amount:       amount,
		OccurredAt:   occurredAt,
		MerchantName: req.MerchantName,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		status := domain.TransactionStatus(*req.Status)
		input.Status = &status
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		if resp := h.transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	projected := h.project(userID, transaction)

	log.Info().Str("user_id", userID.String()).Str("transaction_id", transaction.ID.String()).Msg("Transaction created")
	h.publisher.Publish(userID, websocket.TransactionCreated(projected))

	return c.JSON(http.StatusCreated, projected)
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	result, err := h.transactionService.ListTransactions(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	items := make([]*view.Transaction, len(result.Items))
	categories := make(map[uuid.UUID]*domain.Category)
	accounts := make(map[uuid.UUID]*domain.Account)
	for i, t := range result.Items {
		category, ok := categories[t.CategoryID]
		if !ok {
			category, _ = h.categoryService.GetCategory(userID, t.CategoryID)
			categories[t.CategoryID] = category
		}
		account, ok := accounts[t.AccountID]
		if !ok {
			account, _ = h.accountService.GetAccount(userID, t.AccountID)
			accounts[t.AccountID] = account
		}
		items[i] = view.NewTransaction(t, category, account)
	}

	return c.JSON(http.StatusOK, view.NewPage(items, result.Page, result.PerPage, result.Total))
}

// GetSummary handles GET /api/v1/transactions/summary
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var from, to *time.Time
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			return NewValidationError(c, "Invalid from date", nil)
		}
		from = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			return NewValidationError(c, "Invalid to date", nil)
		}
		to = &t
	}

	summary, err := h.transactionService.Summary(userID, from, to)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute summary")
		return NewInternalError(c, "Failed to compute summary")
	}

	return c.JSON(http.StatusOK, SummaryResponse{
		TotalIncome:  summary.TotalIncome.StringFixed(2),
		TotalExpense: summary.TotalExpense.StringFixed(2),
		Balance:      summary.Balance.StringFixed(2),
	})
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Transaction belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, h.project(userID, transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateTransactionInput{
		MerchantName: req.MerchantName,
		Notes:        req.Notes,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return NewValidationError(c, "Invalid category ID", nil)
		}
		input.CategoryID = &categoryID
	}
	if req.AccountID != nil {
		accountID, err := uuid.Parse(*req.AccountID)
		if err != nil {
			return NewValidationError(c, "Invalid account ID", nil)
		}
		input.AccountID = &accountID
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", nil)
		}
		input.Amount = &amount
	}
	if req.OccurredAt != nil {
		occurredAt, err := parseDateTime(*req.OccurredAt)
		if err != nil {
			return NewValidationError(c, "Invalid date", nil)
		}
		input.OccurredAt = &occurredAt
	}
	if req.Status != nil {
		status := domain.TransactionStatus(*req.Status)
		input.Status = &status
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := h.transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	projected := h.project(userID, transaction)

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Transaction updated")
	h.publisher.Publish(userID, websocket.TransactionUpdated(projected))

	return c.JSON(http.StatusOK, projected)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Transaction belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Transaction deleted")
	h.publisher.Publish(userID, websocket.TransactionDeleted(map[string]string{"id": id.String()}))

	return c.NoContent(http.StatusNoContent)
}

// project joins a transaction with its category and account for the API view.
// Missing joins degrade to a partial view rather than failing the request.
func (h *TransactionHandler) project(userID uuid.UUID, t *domain.Transaction) *view.Transaction {
	category, _ := h.categoryService.GetCategory(userID, t.CategoryID)
	account, _ := h.accountService.GetAccount(userID, t.AccountID)
	return view.NewTransaction(t, category, account)
}

// transactionErrorResponse maps transaction domain errors shared between
// create and update to problem responses. Returns nil for unknown errors.
func (h *TransactionHandler) transactionErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be non-zero"},
		})
	case errors.Is(err, domain.ErrInvalidStatus):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "status", Message: "Status must be one of: pending, completed, cancelled"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Notes must be 1000 characters or less"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category does not exist"},
		})
	case errors.Is(err, domain.ErrCategoryNotAccessible):
		return NewForbiddenError(c, "Category is not accessible")
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account does not exist"},
		})
	case errors.Is(err, domain.ErrUnauthorized):
		return NewForbiddenError(c, "Account belongs to another user")
	}
	return nil
}

// parseTransactionFilters reads listing query parameters
func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{
		Search:  c.QueryParam("search"),
		SortBy:  domain.TransactionSortField(c.QueryParam("sortBy")),
		SortDir: domain.SortDirection(c.QueryParam("sortDir")),
	}

	if raw := c.QueryParam("categoryIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return nil, errors.New("Invalid category ID filter")
			}
			filters.CategoryIDs = append(filters.CategoryIDs, id)
		}
	}
	if raw := c.QueryParam("accountId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.New("Invalid account ID filter")
		}
		filters.AccountID = &id
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			return nil, errors.New("Invalid from date")
		}
		filters.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			return nil, errors.New("Invalid to date")
		}
		filters.To = &t
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("Invalid page")
		}
		filters.Page = page
	}
	if raw := c.QueryParam("perPage"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("Invalid perPage")
		}
		filters.PerPage = perPage
	}

	return filters, nil
}

// parseDateTime accepts either a plain date or an RFC 3339 timestamp
func parseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
