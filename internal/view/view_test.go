package view

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestSignedAmount_Expense(t *testing.T) {
	amount := decimal.NewFromInt(50000)

	signed := SignedAmount(amount, domain.CategoryTypeExpense)
	if !signed.Equal(decimal.NewFromInt(-50000)) {
		t.Errorf("Expected -50000, got %s", signed.String())
	}
}

func TestSignedAmount_Income(t *testing.T) {
	amount := decimal.NewFromInt(50000)

	signed := SignedAmount(amount, domain.CategoryTypeIncome)
	if !signed.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected 50000, got %s", signed.String())
	}
}

func TestSignedAmount_NegativeInputNormalized(t *testing.T) {
	amount := decimal.NewFromInt(-120)

	if signed := SignedAmount(amount, domain.CategoryTypeIncome); !signed.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected 120, got %s", signed.String())
	}
	if signed := SignedAmount(amount, domain.CategoryTypeExpense); !signed.Equal(decimal.NewFromInt(-120)) {
		t.Errorf("Expected -120, got %s", signed.String())
	}
}

func TestSignedAmount_Idempotent(t *testing.T) {
	amount := decimal.NewFromFloat(123.45)

	first := SignedAmount(amount, domain.CategoryTypeExpense)
	second := SignedAmount(first, domain.CategoryTypeExpense)

	if !first.Equal(second) {
		t.Errorf("Expected recomputation to be stable, got %s then %s", first.String(), second.String())
	}
	if !first.Abs().Equal(amount.Abs()) {
		t.Errorf("Expected |signed| == |amount|, got %s vs %s", first.Abs().String(), amount.String())
	}
}

func TestNewTransaction_SignsByCategoryType(t *testing.T) {
	category := &domain.Category{ID: uuid.New(), Name: "Food", Type: domain.CategoryTypeExpense}
	account := &domain.Account{ID: uuid.New(), Name: "Cash", Currency: "VND"}
	tx := &domain.Transaction{
		ID:         uuid.New(),
		CategoryID: category.ID,
		AccountID:  account.ID,
		Amount:     decimal.NewFromInt(50000),
		OccurredAt: time.Now(),
		Status:     domain.StatusCompleted,
	}

	v := NewTransaction(tx, category, account)

	if !v.Amount.Equal(decimal.NewFromInt(-50000)) {
		t.Errorf("Expected signed amount -50000, got %s", v.Amount.String())
	}
	if !v.RawAmount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected raw amount 50000, got %s", v.RawAmount.String())
	}
	if v.Category == nil || v.Category.Name != "Food" {
		t.Error("Expected embedded category summary")
	}
	if v.Account == nil || v.Account.Currency != "VND" {
		t.Error("Expected embedded account summary")
	}
}

func TestNewTransaction_WithoutJoins(t *testing.T) {
	tx := &domain.Transaction{ID: uuid.New(), Amount: decimal.NewFromInt(10)}

	v := NewTransaction(tx, nil, nil)

	if v.Category != nil || v.Account != nil {
		t.Error("Expected no embedded summaries")
	}
	if !v.Amount.Equal(tx.Amount) {
		t.Errorf("Expected unsigned amount without category join, got %s", v.Amount.String())
	}
}

func TestNewCategoryTree_NestsChildrenUnderRoots(t *testing.T) {
	rootID := uuid.New()
	otherID := uuid.New()
	roots := []*domain.CategoryWithChildCount{
		{Category: domain.Category{ID: rootID, Name: "Food", Type: domain.CategoryTypeExpense}, ChildCount: 2},
	}
	children := []*domain.Category{
		{ID: uuid.New(), Name: "Breakfast", Type: domain.CategoryTypeExpense, ParentID: &rootID},
		{ID: uuid.New(), Name: "Lunch", Type: domain.CategoryTypeExpense, ParentID: &rootID},
		{ID: uuid.New(), Name: "Orphan", Type: domain.CategoryTypeExpense, ParentID: &otherID},
	}

	tree := NewCategoryTree(roots, children)

	if len(tree) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(tree))
	}
	if tree[0].ChildCount != 2 {
		t.Errorf("Expected child count 2, got %d", tree[0].ChildCount)
	}
	if len(tree[0].Children) != 2 {
		t.Errorf("Expected 2 nested children, got %d", len(tree[0].Children))
	}
}

func TestNewPage_LastPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		perPage  int
		lastPage int
	}{
		{"empty", 0, 15, 1},
		{"exact", 30, 15, 2},
		{"remainder", 31, 15, 3},
		{"single", 1, 15, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]int{}, 1, tt.perPage, tt.total)
			if p.LastPage != tt.lastPage {
				t.Errorf("Expected last page %d, got %d", tt.lastPage, p.LastPage)
			}
		})
	}
}
