package domain

import "errors"

// Domain errors
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountTypeNotFound = errors.New("account type not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrUnauthorized    = errors.New("unauthorized")
	ErrSystemImmutable = errors.New("system categories cannot be modified")

	ErrParentNotFound        = errors.New("parent category not found")
	ErrTypeMismatch          = errors.New("parent category has a different type")
	ErrParentNotAccessible   = errors.New("parent category is not accessible")
	ErrSelfParent            = errors.New("category cannot be its own parent")
	ErrCategoryDepthExceeded = errors.New("subcategories cannot have children")

	ErrHasChildrenOrTransactions = errors.New("category has subcategories or transactions")
	ErrHasTransactions           = errors.New("account has transactions")
	ErrCategoryNotAccessible     = errors.New("category is not accessible")

	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidStatus       = errors.New("invalid transaction status")
	ErrInvalidBalanceOp    = errors.New("invalid balance operation")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrNotesTooLong        = errors.New("notes exceed maximum length")
	ErrInvalidCurrency     = errors.New("currency must be a 3-letter code")
)

// ErrStorage marks infrastructure failures so callers can tell them apart
// from business-rule violations. Repositories wrap driver errors with it.
var ErrStorage = errors.New("storage error")

// Validation constants
const (
	MaxNameLength  = 255
	MaxNotesLength = 1000
)
