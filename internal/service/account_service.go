package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic, including the only
// code path that may change a stored balance.
type AccountService struct {
	accountRepo     domain.AccountRepository
	accountTypeRepo domain.AccountTypeRepository
	guard           domain.OwnershipGuard
	defaultCurrency string
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, accountTypeRepo domain.AccountTypeRepository, guard domain.OwnershipGuard, defaultCurrency string) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		accountTypeRepo: accountTypeRepo,
		guard:           guard,
		defaultCurrency: defaultCurrency,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	AccountTypeID uuid.UUID
	Name          string
	Currency      string
	Icon          *string
	Color         *string
	Description   *string
}

// CreateAccount creates an account with balance 0, the configured default
// currency unless one is given, and active status on.
func (s *AccountService) CreateAccount(ownerID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	if _, err := s.accountTypeRepo.GetByID(input.AccountTypeID); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	account := &domain.Account{
		OwnerID:       ownerID,
		AccountTypeID: input.AccountTypeID,
		Name:          name,
		Balance:       decimal.Zero,
		Currency:      currency,
		Icon:          input.Icon,
		Color:         input.Color,
		Description:   input.Description,
		IsActive:      true,
	}

	return s.accountRepo.Create(account)
}

// UpdateAccountInput holds the patch for updating account metadata. There is
// deliberately no balance or owner field here: those are never accepted from
// a generic patch.
type UpdateAccountInput struct {
	Name          *string
	AccountTypeID *uuid.UUID
	Currency      *string
	Icon          *string
	Color         *string
	Description   *string
}

// UpdateAccount updates an account's metadata for its owner
func (s *AccountService) UpdateAccount(ownerID uuid.UUID, id uuid.UUID, input UpdateAccountInput) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanWrite(ownerID, &account.OwnerID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxNameLength {
			return nil, domain.ErrNameTooLong
		}
		account.Name = name
	}

	if input.AccountTypeID != nil {
		if _, err := s.accountTypeRepo.GetByID(*input.AccountTypeID); err != nil {
			return nil, err
		}
		account.AccountTypeID = *input.AccountTypeID
	}

	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			return nil, domain.ErrInvalidCurrency
		}
		account.Currency = currency
	}

	if input.Icon != nil {
		account.Icon = input.Icon
	}
	if input.Color != nil {
		account.Color = input.Color
	}
	if input.Description != nil {
		account.Description = input.Description
	}

	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount deletes an account that no transaction references
func (s *AccountService) DeleteAccount(ownerID uuid.UUID, id uuid.UUID) error {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.guard.CanWrite(ownerID, &account.OwnerID); err != nil {
		return err
	}

	hasTx, err := s.accountRepo.HasTransactions(id)
	if err != nil {
		return err
	}
	if hasTx {
		return domain.ErrHasTransactions
	}

	return s.accountRepo.Delete(id)
}

// GetAccount retrieves an account owned by the principal
func (s *AccountService) GetAccount(ownerID uuid.UUID, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.guard.CanRead(ownerID, &account.OwnerID) {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

// ListAccounts retrieves the owner's accounts, optionally only active ones
func (s *AccountService) ListAccounts(ownerID uuid.UUID, activeOnly bool) ([]*domain.Account, error) {
	return s.accountRepo.ListForOwner(ownerID, activeOnly)
}

// ListAccountsByType retrieves the owner's accounts of one account type
func (s *AccountService) ListAccountsByType(ownerID, accountTypeID uuid.UUID) ([]*domain.Account, error) {
	return s.accountRepo.ListByType(ownerID, accountTypeID)
}

// MutateBalance applies an add/subtract/set operation to the stored balance.
// The repository performs the mutation as a single serialized
// read-modify-write so concurrent mutations never lose updates. When ownerID
// is non-nil the caller is verified as the account's owner first.
func (s *AccountService) MutateBalance(ownerID *uuid.UUID, id uuid.UUID, amount decimal.Decimal, op domain.BalanceOp) error {
	if !op.Valid() {
		return domain.ErrInvalidBalanceOp
	}

	if ownerID != nil {
		account, err := s.accountRepo.GetByID(id)
		if err != nil {
			return err
		}
		if err := s.guard.CanWrite(*ownerID, &account.OwnerID); err != nil {
			return err
		}
	}

	return s.accountRepo.MutateBalance(id, amount, op)
}

// TotalBalanceResult holds the summed balance and the currency it was
// filtered on.
type TotalBalanceResult struct {
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// TotalBalance sums the owner's account balances, active and inactive alike.
// A currency filter is an exact match on the stored code; no conversion.
func (s *AccountService) TotalBalance(ownerID uuid.UUID, currency string) (*TotalBalanceResult, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	total, err := s.accountRepo.SumBalances(ownerID, currency)
	if err != nil {
		return nil, err
	}

	resultCurrency := currency
	if resultCurrency == "" {
		resultCurrency = s.defaultCurrency
	}
	return &TotalBalanceResult{Total: total, Currency: resultCurrency}, nil
}

// ToggleActive flips the account's active flag
func (s *AccountService) ToggleActive(ownerID uuid.UUID, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanWrite(ownerID, &account.OwnerID); err != nil {
		return nil, err
	}

	account.IsActive = !account.IsActive
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}
