// Package view holds the read models returned to API callers. Everything in
// here is a pure projection over stored entities: the signed amount in
// particular is derived from the category type on every read and is never
// written back.
package view

import (
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount derives the presentation sign from the category type: expense
// amounts are negative, everything else positive. The input magnitude may
// carry either sign; the result only depends on its absolute value.
func SignedAmount(amount decimal.Decimal, categoryType domain.CategoryType) decimal.Decimal {
	abs := amount.Abs()
	if categoryType == domain.CategoryTypeExpense {
		return abs.Neg()
	}
	return abs
}

// CategorySummary is the compact category shape embedded in transactions.
type CategorySummary struct {
	ID   uuid.UUID           `json:"id"`
	Name string              `json:"name"`
	Type domain.CategoryType `json:"type"`
	Icon *string             `json:"icon,omitempty"`
}

// AccountSummary is the compact account shape embedded in transactions.
type AccountSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
}

// Transaction is the API shape of a transaction: the signed amount next to
// the raw stored magnitude, plus embedded category/account summaries.
type Transaction struct {
	ID           uuid.UUID                `json:"id"`
	Amount       decimal.Decimal          `json:"amount"`
	RawAmount    decimal.Decimal          `json:"rawAmount"`
	MerchantName *string                  `json:"merchantName,omitempty"`
	OccurredAt   time.Time                `json:"occurredAt"`
	Notes        *string                  `json:"notes,omitempty"`
	Status       domain.TransactionStatus `json:"status"`
	Category     *CategorySummary         `json:"category,omitempty"`
	Account      *AccountSummary          `json:"account,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// NewTransaction projects a stored transaction joined with its category and
// account. Either join may be nil when the caller did not load it.
func NewTransaction(t *domain.Transaction, category *domain.Category, account *domain.Account) *Transaction {
	v := &Transaction{
		ID:           t.ID,
		RawAmount:    t.Amount,
		Amount:       t.Amount,
		MerchantName: t.MerchantName,
		OccurredAt:   t.OccurredAt,
		Notes:        t.Notes,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if category != nil {
		v.Amount = SignedAmount(t.Amount, category.Type)
		v.Category = &CategorySummary{
			ID:   category.ID,
			Name: category.Name,
			Type: category.Type,
			Icon: category.Icon,
		}
	}
	if account != nil {
		v.Account = &AccountSummary{
			ID:       account.ID,
			Name:     account.Name,
			Currency: account.Currency,
		}
	}
	return v
}

// Category is the API shape of a root category with its children nested.
type Category struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Type       domain.CategoryType `json:"type"`
	Icon       *string             `json:"icon,omitempty"`
	Color      *string             `json:"color,omitempty"`
	IsSystem   bool                `json:"isSystem"`
	ChildCount int                 `json:"childCount"`
	Children   []*Category         `json:"children,omitempty"`
}

// NewCategory projects a single category without children.
func NewCategory(c *domain.Category) *Category {
	return &Category{
		ID:       c.ID,
		Name:     c.Name,
		Type:     c.Type,
		Icon:     c.Icon,
		Color:    c.Color,
		IsSystem: c.IsSystem,
	}
}

// NewCategoryTree projects root categories with their children nested under
// the matching root. Children whose parent is not among the roots are
// dropped.
func NewCategoryTree(roots []*domain.CategoryWithChildCount, children []*domain.Category) []*Category {
	byParent := make(map[uuid.UUID][]*Category, len(roots))
	for _, child := range children {
		if child.ParentID == nil {
			continue
		}
		byParent[*child.ParentID] = append(byParent[*child.ParentID], NewCategory(child))
	}

	out := make([]*Category, 0, len(roots))
	for _, root := range roots {
		v := NewCategory(&root.Category)
		v.ChildCount = root.ChildCount
		v.Children = byParent[root.ID]
		out = append(out, v)
	}
	return out
}

// Page is the pagination envelope for list responses.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PerPage  int   `json:"perPage"`
	Total    int64 `json:"total"`
	LastPage int   `json:"lastPage"`
}

// NewPage builds a pagination envelope around already-projected items.
func NewPage[T any](items []T, page, perPage int, total int64) Page[T] {
	lastPage := 1
	if perPage > 0 {
		lastPage = int(total / int64(perPage))
		if total%int64(perPage) > 0 || lastPage == 0 {
			lastPage++
		}
	}
	return Page[T]{
		Items:    items,
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: lastPage,
	}
}
