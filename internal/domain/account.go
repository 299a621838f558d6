package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceOp selects how MutateBalance changes the stored balance.
type BalanceOp string

const (
	BalanceAdd      BalanceOp = "add"
	BalanceSubtract BalanceOp = "subtract"
	BalanceSet      BalanceOp = "set"
)

// Valid reports whether op is a known balance operation.
func (op BalanceOp) Valid() bool {
	return op == BalanceAdd || op == BalanceSubtract || op == BalanceSet
}

// Account is a place money lives: cash, a bank account, an e-wallet. Balance
// is only ever changed through the dedicated MutateBalance path; a generic
// update never touches it.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"ownerId"`
	AccountTypeID uuid.UUID       `json:"accountTypeId"`
	Name          string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Icon          *string         `json:"icon,omitempty"`
	Color         *string         `json:"color,omitempty"`
	Description   *string         `json:"description,omitempty"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// AccountType is a seeded lookup row (cash, bank, e-wallet, ...).
type AccountType struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Icon  *string   `json:"icon,omitempty"`
	Color *string   `json:"color,omitempty"`
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(id uuid.UUID) (*Account, error)
	ListForOwner(ownerID uuid.UUID, activeOnly bool) ([]*Account, error)
	ListByType(ownerID, accountTypeID uuid.UUID) ([]*Account, error)
	// Update persists metadata and the active flag. It must never write the
	// balance or owner columns; MutateBalance is the only balance path.
	Update(account *Account) error
	Delete(id uuid.UUID) error
	HasTransactions(id uuid.UUID) (bool, error)
	// MutateBalance applies op atomically relative to the stored value at the
	// instant of mutation. Concurrent calls must all be reflected.
	MutateBalance(id uuid.UUID, amount decimal.Decimal, op BalanceOp) error
	// SumBalances totals balances for the owner, active or not. An empty
	// currency means no filter; otherwise exact match on the stored code.
	SumBalances(ownerID uuid.UUID, currency string) (decimal.Decimal, error)
}

type AccountTypeRepository interface {
	Create(accountType *AccountType) (*AccountType, error)
	GetByID(id uuid.UUID) (*AccountType, error)
	GetByName(name string) (*AccountType, error)
	List() ([]*AccountType, error)
}
