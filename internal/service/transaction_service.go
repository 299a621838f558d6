package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionService creates, updates and deletes transactions, checks that
// referenced categories and accounts are accessible, and computes period
// summaries.
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	accountRepo     domain.AccountRepository
	guard           domain.OwnershipGuard
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository, accountRepo domain.AccountRepository, guard domain.OwnershipGuard) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		accountRepo:     accountRepo,
		guard:           guard,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	CategoryID   uuid.UUID
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	OccurredAt   time.Time
	MerchantName *string
	Notes        *string
	Status       *domain.TransactionStatus
}

// CreateTransaction creates a transaction referencing an accessible category
// and an owned account. Callers may submit negative magnitudes by convention;
// the stored amount is always the absolute value.
func (s *TransactionService) CreateTransaction(ownerID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	amount := input.Amount.Abs()
	if amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}

	if err := s.checkCategoryAccessible(ownerID, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkAccountOwned(ownerID, input.AccountID); err != nil {
		return nil, err
	}

	status := domain.StatusCompleted
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		status = *input.Status
	}

	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		OwnerID:      ownerID,
		CategoryID:   input.CategoryID,
		AccountID:    input.AccountID,
		Amount:       amount,
		MerchantName: trimOptional(input.MerchantName),
		OccurredAt:   input.OccurredAt,
		Notes:        notes,
		Status:       status,
	}

	return s.transactionRepo.Create(transaction)
}

// UpdateTransactionInput holds the patch for updating a transaction. Nil
// fields are left unchanged; the owner field is never patchable.
type UpdateTransactionInput struct {
	CategoryID   *uuid.UUID
	AccountID    *uuid.UUID
	Amount       *decimal.Decimal
	OccurredAt   *time.Time
	MerchantName *string
	Notes        *string
	Status       *domain.TransactionStatus
}

// UpdateTransaction updates the owner's transaction, re-running accessibility
// checks for any changed category or account reference.
func (s *TransactionService) UpdateTransaction(ownerID uuid.UUID, id uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanWrite(ownerID, &transaction.OwnerID); err != nil {
		return nil, err
	}

	if input.CategoryID != nil && *input.CategoryID != transaction.CategoryID {
		if err := s.checkCategoryAccessible(ownerID, *input.CategoryID); err != nil {
			return nil, err
		}
		transaction.CategoryID = *input.CategoryID
	}

	if input.AccountID != nil && *input.AccountID != transaction.AccountID {
		if err := s.checkAccountOwned(ownerID, *input.AccountID); err != nil {
			return nil, err
		}
		transaction.AccountID = *input.AccountID
	}

	if input.Amount != nil {
		amount := input.Amount.Abs()
		if amount.IsZero() {
			return nil, domain.ErrInvalidAmount
		}
		transaction.Amount = amount
	}

	if input.OccurredAt != nil {
		transaction.OccurredAt = *input.OccurredAt
	}
	if input.MerchantName != nil {
		transaction.MerchantName = trimOptional(input.MerchantName)
	}
	if input.Notes != nil {
		notes, err := normalizeNotes(input.Notes)
		if err != nil {
			return nil, err
		}
		transaction.Notes = notes
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		transaction.Status = *input.Status
	}

	if err := s.transactionRepo.Update(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction deletes the owner's transaction
func (s *TransactionService) DeleteTransaction(ownerID uuid.UUID, id uuid.UUID) error {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.guard.CanWrite(ownerID, &transaction.OwnerID); err != nil {
		return err
	}
	return s.transactionRepo.Delete(id)
}

// GetTransaction retrieves a single transaction owned by the principal
func (s *TransactionService) GetTransaction(ownerID uuid.UUID, id uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.guard.CanRead(ownerID, &transaction.OwnerID) {
		return nil, domain.ErrUnauthorized
	}
	return transaction, nil
}

// ListTransactions retrieves the owner's transactions with pagination,
// sorting and filters. Unknown sort fields fall back to the transaction date
// and unknown directions to descending, so callers always get a stable order.
func (s *TransactionService) ListTransactions(ownerID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	f := domain.TransactionFilters{}
	if filters != nil {
		f = *filters
	}

	switch f.SortBy {
	case domain.SortByDate, domain.SortByAmount, domain.SortByCreatedAt, domain.SortByUpdatedAt:
	default:
		f.SortBy = domain.SortByDate
	}
	if f.SortDir != domain.SortAsc {
		f.SortDir = domain.SortDesc
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = domain.DefaultPerPage
	}
	if f.PerPage > domain.MaxPerPage {
		f.PerPage = domain.MaxPerPage
	}

	// The range is inclusive on both ends; the end bound covers its whole day.
	if f.To != nil {
		to := endOfDay(*f.To)
		f.To = &to
	}

	return s.transactionRepo.ListForOwner(ownerID, &f)
}

// Summary computes income/expense totals for an optional inclusive date
// range. Totals are bucketed by the referenced category's type, never by a
// stored sign.
func (s *TransactionService) Summary(ownerID uuid.UUID, from, to *time.Time) (*domain.Summary, error) {
	if to != nil {
		t := endOfDay(*to)
		to = &t
	}

	totalIncome, err := s.transactionRepo.SumByCategoryType(ownerID, domain.CategoryTypeIncome, from, to)
	if err != nil {
		return nil, err
	}

	totalExpense, err := s.transactionRepo.SumByCategoryType(ownerID, domain.CategoryTypeExpense, from, to)
	if err != nil {
		return nil, err
	}

	return &domain.Summary{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome.Sub(totalExpense),
	}, nil
}

// checkCategoryAccessible verifies the category exists and is either a system
// category or owned by the principal.
func (s *TransactionService) checkCategoryAccessible(ownerID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if !s.guard.CanRead(ownerID, category.OwnerID) {
		return domain.ErrCategoryNotAccessible
	}
	return nil
}

// checkAccountOwned verifies the account exists and belongs to the principal.
func (s *TransactionService) checkAccountOwned(ownerID, accountID uuid.UUID) error {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return err
	}
	if account.OwnerID != ownerID {
		return domain.ErrUnauthorized
	}
	return nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeNotes(notes *string) (*string, error) {
	trimmed := trimOptional(notes)
	if trimmed != nil && len(*trimmed) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}
	return trimmed, nil
}
