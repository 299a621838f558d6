package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Valid reports whether s is a known status. There is no transition guard:
// the field stays freely editable by the owner.
func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// Transaction records a dated movement of money through an account, tagged
// with a category. Amount is always a non-negative magnitude; the sign shown
// to callers is derived from the category's type at read time and never
// persisted.
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	OwnerID      uuid.UUID         `json:"ownerId"`
	CategoryID   uuid.UUID         `json:"categoryId"`
	AccountID    uuid.UUID         `json:"accountId"`
	Amount       decimal.Decimal   `json:"amount"`
	MerchantName *string           `json:"merchantName,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
	Notes        *string           `json:"notes,omitempty"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Sort fields accepted by List; anything else falls back to SortByDate.
type TransactionSortField string

const (
	SortByDate      TransactionSortField = "date"
	SortByAmount    TransactionSortField = "amount"
	SortByCreatedAt TransactionSortField = "createdAt"
	SortByUpdatedAt TransactionSortField = "updatedAt"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// TransactionFilters narrows and orders transaction listings. From/To are
// inclusive; To is rounded up to the end of its day before filtering.
type TransactionFilters struct {
	CategoryIDs []uuid.UUID
	AccountID   *uuid.UUID
	Search      string
	From        *time.Time
	To          *time.Time
	SortBy      TransactionSortField
	SortDir     SortDirection
	Page        int
	PerPage     int
}

// PaginatedTransactions is the pagination envelope for transaction listings.
type PaginatedTransactions struct {
	Items    []*Transaction `json:"items"`
	Page     int            `json:"page"`
	PerPage  int            `json:"perPage"`
	Total    int64          `json:"total"`
	LastPage int            `json:"lastPage"`
}

// Summary holds aggregated totals for a period. Totals are bucketed by the
// referenced category's type, not by any stored sign.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(id uuid.UUID) (*Transaction, error)
	ListForOwner(ownerID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	Update(transaction *Transaction) error
	Delete(id uuid.UUID) error
	// SumByCategoryType totals magnitudes of the owner's transactions whose
	// category has the given type, optionally bounded by [from, to].
	SumByCategoryType(ownerID uuid.UUID, categoryType CategoryType, from, to *time.Time) (decimal.Decimal, error)
}
