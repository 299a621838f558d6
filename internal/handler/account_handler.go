package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/moneta-app/moneta-backend/internal/service"
	"github.com/moneta-app/moneta-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
	publisher      websocket.EventPublisher
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, publisher websocket.EventPublisher) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		publisher:      publisher,
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	AccountTypeID string  `json:"accountTypeId"`
	Name          string  `json:"name"`
	Currency      string  `json:"currency,omitempty"`
	Icon          *string `json:"icon,omitempty"`
	Color         *string `json:"color,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// UpdateAccountRequest represents the update account request body. Balance is
// deliberately not part of this shape.
type UpdateAccountRequest struct {
	Name          *string `json:"name,omitempty"`
	AccountTypeID *string `json:"accountTypeId,omitempty"`
	Currency      *string `json:"currency,omitempty"`
	Icon          *string `json:"icon,omitempty"`
	Color         *string `json:"color,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// MutateBalanceRequest represents the balance mutation request body
type MutateBalanceRequest struct {
	Amount    string `json:"amount"`
	Operation string `json:"operation"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID            string  `json:"id"`
	AccountTypeID string  `json:"accountTypeId"`
	Name          string  `json:"name"`
	Balance       string  `json:"balance"`
	Currency      string  `json:"currency"`
	Icon          *string `json:"icon,omitempty"`
	Color         *string `json:"color,omitempty"`
	Description   *string `json:"description,omitempty"`
	IsActive      bool    `json:"isActive"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// TotalBalanceResponse represents the summed balance API response
type TotalBalanceResponse struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	accountTypeID, err := uuid.Parse(req.AccountTypeID)
	if err != nil {
		return NewValidationError(c, "Invalid account type ID", []ValidationError{
			{Field: "accountTypeId", Message: "Must be a valid UUID"},
		})
	}

	input := service.CreateAccountInput{
		AccountTypeID: accountTypeID,
		Name:          req.Name,
		Currency:      req.Currency,
		Icon:          req.Icon,
		Color:         req.Color,
		Description:   req.Description,
	}

	account, err := h.accountService.CreateAccount(userID, input)
	if err != nil {
		if resp := accountValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrAccountTypeNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "accountTypeId", Message: "Account type does not exist"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", account.ID.String()).Str("name", account.Name).Msg("Account created")
	h.publisher.Publish(userID, websocket.AccountCreated(toAccountResponse(account)))

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	activeOnly := c.QueryParam("activeOnly") == "true"

	var accounts []*domain.Account
	var err error
	if raw := c.QueryParam("accountTypeId"); raw != "" {
		accountTypeID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return NewValidationError(c, "Invalid account type ID", nil)
		}
		accounts, err = h.accountService.ListAccountsByType(userID, accountTypeID)
	} else {
		accounts, err = h.accountService.ListAccounts(userID, activeOnly)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list accounts")
		return NewInternalError(c, "Failed to list accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccount(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Account belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// GetTotalBalance handles GET /api/v1/accounts/total-balance
func (h *AccountHandler) GetTotalBalance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	result, err := h.accountService.TotalBalance(userID, c.QueryParam("currency"))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to sum balances")
		return NewInternalError(c, "Failed to sum balances")
	}

	return c.JSON(http.StatusOK, TotalBalanceResponse{
		Total:    result.Total.StringFixed(2),
		Currency: result.Currency,
	})
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateAccountInput{
		Name:        req.Name,
		Currency:    req.Currency,
		Icon:        req.Icon,
		Color:       req.Color,
		Description: req.Description,
	}
	if req.AccountTypeID != nil {
		accountTypeID, err := uuid.Parse(*req.AccountTypeID)
		if err != nil {
			return NewValidationError(c, "Invalid account type ID", []ValidationError{
				{Field: "accountTypeId", Message: "Must be a valid UUID"},
			})
		}
		input.AccountTypeID = &accountTypeID
	}

	account, err := h.accountService.UpdateAccount(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Account belongs to another user")
		}
		if errors.Is(err, domain.ErrAccountTypeNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "accountTypeId", Message: "Account type does not exist"},
			})
		}
		if resp := accountValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", account.ID.String()).Msg("Account updated")
	h.publisher.Publish(userID, websocket.AccountUpdated(toAccountResponse(account)))

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// MutateBalance handles PATCH /api/v1/accounts/:id/balance
func (h *AccountHandler) MutateBalance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req MutateBalanceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	if err := h.accountService.MutateBalance(&userID, id, amount, domain.BalanceOp(req.Operation)); err != nil {
		if errors.Is(err, domain.ErrInvalidBalanceOp) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "operation", Message: "Operation must be one of: add, subtract, set"},
			})
		}
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Account belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to mutate balance")
		return NewInternalError(c, "Failed to mutate balance")
	}

	account, err := h.accountService.GetAccount(userID, id)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to reload account")
		return NewInternalError(c, "Failed to reload account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", id.String()).Str("operation", req.Operation).Msg("Account balance mutated")
	h.publisher.Publish(userID, websocket.AccountBalanceChanged(toAccountResponse(account)))

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// ToggleActive handles PATCH /api/v1/accounts/:id/toggle-active
func (h *AccountHandler) ToggleActive(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.ToggleActive(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Account belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to toggle account")
		return NewInternalError(c, "Failed to toggle account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", id.String()).Bool("is_active", account.IsActive).Msg("Account toggled")
	h.publisher.Publish(userID, websocket.AccountUpdated(toAccountResponse(account)))

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(userID, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Account belongs to another user")
		}
		if errors.Is(err, domain.ErrHasTransactions) {
			return NewConflictError(c, "Account still has transactions")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to delete account")
		return NewInternalError(c, "Failed to delete account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Account deleted")
	h.publisher.Publish(userID, websocket.AccountDeleted(map[string]string{"id": id.String()}))

	return c.NoContent(http.StatusNoContent)
}

// accountValidationResponse maps shared account validation errors to 400
// problem responses. Returns nil when err is not a validation error.
func accountValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidCurrency):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currency", Message: "Currency must be a 3-letter code"},
		})
	}
	return nil
}

// toAccountResponse converts a domain.Account to its API shape
func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID.String(),
		AccountTypeID: account.AccountTypeID.String(),
		Name:          account.Name,
		Balance:       account.Balance.StringFixed(2),
		Currency:      account.Currency,
		Icon:          account.Icon,
		Color:         account.Color,
		Description:   account.Description,
		IsActive:      account.IsActive,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
}
