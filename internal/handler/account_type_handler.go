package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AccountTypeHandler serves the seeded account type lookup table
type AccountTypeHandler struct {
	accountTypeRepo domain.AccountTypeRepository
}

// NewAccountTypeHandler creates a new AccountTypeHandler
func NewAccountTypeHandler(accountTypeRepo domain.AccountTypeRepository) *AccountTypeHandler {
	return &AccountTypeHandler{accountTypeRepo: accountTypeRepo}
}

// GetAccountTypes handles GET /api/v1/account-types
func (h *AccountTypeHandler) GetAccountTypes(c echo.Context) error {
	types, err := h.accountTypeRepo.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list account types")
		return NewInternalError(c, "Failed to list account types")
	}
	return c.JSON(http.StatusOK, types)
}

// GetAccountType handles GET /api/v1/account-types/:id
func (h *AccountTypeHandler) GetAccountType(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account type ID", nil)
	}

	accountType, err := h.accountTypeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountTypeNotFound) {
			return NewNotFoundError(c, "Account type not found")
		}
		log.Error().Err(err).Str("account_type_id", id.String()).Msg("Failed to get account type")
		return NewInternalError(c, "Failed to get account type")
	}
	return c.JSON(http.StatusOK, accountType)
}
