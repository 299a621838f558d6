package domain

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category is a classification for transactions. Rows with a nil OwnerID are
// system categories: shared with every user and immutable.
type Category struct {
	ID        uuid.UUID    `json:"id"`
	OwnerID   *uuid.UUID   `json:"ownerId,omitempty"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	ParentID  *uuid.UUID   `json:"parentId,omitempty"`
	Icon      *string      `json:"icon,omitempty"`
	Color     *string      `json:"color,omitempty"`
	IsSystem  bool         `json:"isSystem"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CategoryWithChildCount pairs a root category with the number of
// subcategories beneath it, as produced by list queries.
type CategoryWithChildCount struct {
	Category
	ChildCount int `json:"childCount"`
}

// CategoryFilters narrows category listings.
type CategoryFilters struct {
	Type *CategoryType
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(id uuid.UUID) (*Category, error)
	// ListRootsForOwner returns system roots plus the owner's roots, each
	// annotated with its child count.
	ListRootsForOwner(ownerID uuid.UUID, filters *CategoryFilters) ([]*CategoryWithChildCount, error)
	ListChildren(parentID uuid.UUID) ([]*Category, error)
	Update(category *Category) error
	Delete(id uuid.UUID) error
	HasChildren(id uuid.UUID) (bool, error)
	HasTransactions(id uuid.UUID) (bool, error)
}
