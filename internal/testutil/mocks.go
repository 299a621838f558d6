// Package testutil provides in-memory repository implementations for service
// tests. All mocks are guarded by mutexes so concurrency-sensitive behavior
// (balance mutation in particular) can be exercised for real.
package testutil

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockCategoryRepository is an in-memory implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	mu          sync.RWMutex
	Categories  map[uuid.UUID]*domain.Category
	TxRefCounts map[uuid.UUID]int // transactions referencing a category
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories:  make(map[uuid.UUID]*domain.Category),
		TxRefCounts: make(map[uuid.UUID]int),
	}
}

// Add inserts a category as-is (helper for tests)
func (m *MockCategoryRepository) Add(category *domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *category
	m.Categories[c.ID] = &c
}

// Create stores a new category with a fresh ID and timestamps
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *category
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	m.Categories[c.ID] = &c

	out := c
	return &out, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(id uuid.UUID) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.Categories[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// ListRootsForOwner returns system roots plus the owner's roots with child counts
func (m *MockCategoryRepository) ListRootsForOwner(ownerID uuid.UUID, filters *domain.CategoryFilters) ([]*domain.CategoryWithChildCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	childCounts := make(map[uuid.UUID]int)
	for _, c := range m.Categories {
		if c.ParentID != nil {
			childCounts[*c.ParentID]++
		}
	}

	var out []*domain.CategoryWithChildCount
	for _, c := range m.Categories {
		if c.ParentID != nil {
			continue
		}
		if !c.IsSystem && (c.OwnerID == nil || *c.OwnerID != ownerID) {
			continue
		}
		if filters != nil && filters.Type != nil && c.Type != *filters.Type {
			continue
		}
		out = append(out, &domain.CategoryWithChildCount{Category: *c, ChildCount: childCounts[c.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListChildren returns the subcategories of a parent
func (m *MockCategoryRepository) ListChildren(parentID uuid.UUID) ([]*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Category
	for _, c := range m.Categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			child := *c
			out = append(out, &child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update replaces a stored category
func (m *MockCategoryRepository) Update(category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	c := *category
	c.UpdatedAt = time.Now().UTC()
	m.Categories[c.ID] = &c
	return nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// HasChildren reports whether any category references id as parent
func (m *MockCategoryRepository) HasChildren(id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.Categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

// HasTransactions reports whether any transaction references the category
func (m *MockCategoryRepository) HasTransactions(id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TxRefCounts[id] > 0, nil
}

// MockAccountTypeRepository is an in-memory implementation of domain.AccountTypeRepository
type MockAccountTypeRepository struct {
	mu    sync.RWMutex
	Types map[uuid.UUID]*domain.AccountType
}

// NewMockAccountTypeRepository creates a new MockAccountTypeRepository
func NewMockAccountTypeRepository() *MockAccountTypeRepository {
	return &MockAccountTypeRepository{Types: make(map[uuid.UUID]*domain.AccountType)}
}

// Create stores a new account type
func (m *MockAccountTypeRepository) Create(accountType *domain.AccountType) (*domain.AccountType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := *accountType
	if at.ID == uuid.Nil {
		at.ID = uuid.New()
	}
	m.Types[at.ID] = &at
	out := at
	return &out, nil
}

// GetByID retrieves an account type by ID
func (m *MockAccountTypeRepository) GetByID(id uuid.UUID) (*domain.AccountType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if at, ok := m.Types[id]; ok {
		out := *at
		return &out, nil
	}
	return nil, domain.ErrAccountTypeNotFound
}

// GetByName retrieves an account type by name
func (m *MockAccountTypeRepository) GetByName(name string) (*domain.AccountType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, at := range m.Types {
		if at.Name == name {
			out := *at
			return &out, nil
		}
	}
	return nil, domain.ErrAccountTypeNotFound
}

// List returns all account types
func (m *MockAccountTypeRepository) List() ([]*domain.AccountType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.AccountType, 0, len(m.Types))
	for _, at := range m.Types {
		t := *at
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MockAccountRepository is an in-memory implementation of domain.AccountRepository.
// MutateBalance runs under the repository mutex, matching the serialized
// read-modify-write contract of the real store.
type MockAccountRepository struct {
	mu          sync.Mutex
	Accounts    map[uuid.UUID]*domain.Account
	TxRefCounts map[uuid.UUID]int
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts:    make(map[uuid.UUID]*domain.Account),
		TxRefCounts: make(map[uuid.UUID]int),
	}
}

// Add inserts an account as-is (helper for tests)
func (m *MockAccountRepository) Add(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := *account
	m.Accounts[a.ID] = &a
}

// Create stores a new account with a fresh ID and timestamps
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := *account
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	m.Accounts[a.ID] = &a

	out := a
	return &out, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.Accounts[id]; ok {
		out := *a
		return &out, nil
	}
	return nil, domain.ErrAccountNotFound
}

// ListForOwner returns the owner's accounts
func (m *MockAccountRepository) ListForOwner(ownerID uuid.UUID, activeOnly bool) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Account
	for _, a := range m.Accounts {
		if a.OwnerID != ownerID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		acc := *a
		out = append(out, &acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListByType returns the owner's accounts of one account type
func (m *MockAccountRepository) ListByType(ownerID, accountTypeID uuid.UUID) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Account
	for _, a := range m.Accounts {
		if a.OwnerID == ownerID && a.AccountTypeID == accountTypeID {
			acc := *a
			out = append(out, &acc)
		}
	}
	return out, nil
}

// Update replaces stored metadata; balance and owner are preserved from the
// stored row regardless of what the argument carries.
func (m *MockAccountRepository) Update(account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a := *account
	a.Balance = stored.Balance
	a.OwnerID = stored.OwnerID
	a.UpdatedAt = time.Now().UTC()
	m.Accounts[a.ID] = &a
	return nil
}

// Delete removes an account
func (m *MockAccountRepository) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.Accounts, id)
	return nil
}

// HasTransactions reports whether any transaction references the account
func (m *MockAccountRepository) HasTransactions(id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TxRefCounts[id] > 0, nil
}

// MutateBalance applies the operation atomically under the repository mutex
func (m *MockAccountRepository) MutateBalance(id uuid.UUID, amount decimal.Decimal, op domain.BalanceOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	switch op {
	case domain.BalanceAdd:
		a.Balance = a.Balance.Add(amount)
	case domain.BalanceSubtract:
		a.Balance = a.Balance.Sub(amount)
	case domain.BalanceSet:
		a.Balance = amount
	default:
		return domain.ErrInvalidBalanceOp
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SumBalances totals the owner's balances with an optional currency filter
func (m *MockAccountRepository) SumBalances(ownerID uuid.UUID, currency string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, a := range m.Accounts {
		if a.OwnerID != ownerID {
			continue
		}
		if currency != "" && a.Currency != currency {
			continue
		}
		total = total.Add(a.Balance)
	}
	return total, nil
}

// MockTransactionRepository is an in-memory implementation of
// domain.TransactionRepository. It consults the category repository for
// type-based aggregation, mirroring the SQL join in the real store.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	Transactions map[uuid.UUID]*domain.Transaction
	Categories   *MockCategoryRepository
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository(categories *MockCategoryRepository) *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[uuid.UUID]*domain.Transaction),
		Categories:   categories,
	}
}

// Create stores a new transaction with a fresh ID and timestamps
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := *transaction
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.Transactions[t.ID] = &t

	if m.Categories != nil {
		m.Categories.mu.Lock()
		m.Categories.TxRefCounts[t.CategoryID]++
		m.Categories.mu.Unlock()
	}

	out := t
	return &out, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, ok := m.Transactions[id]; ok {
		out := *t
		return &out, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// ListForOwner returns a filtered, sorted, paginated listing
func (m *MockTransactionRepository) ListForOwner(ownerID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Transaction
	for _, t := range m.Transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if !matchesFilters(t, filters) {
			continue
		}
		tx := *t
		matched = append(matched, &tx)
	}

	sortTransactions(matched, filters.SortBy, filters.SortDir)

	total := int64(len(matched))
	start := (filters.Page - 1) * filters.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filters.PerPage
	if end > len(matched) {
		end = len(matched)
	}

	lastPage := int(total / int64(filters.PerPage))
	if total%int64(filters.PerPage) > 0 || lastPage == 0 {
		lastPage++
	}

	return &domain.PaginatedTransactions{
		Items:    matched[start:end],
		Page:     filters.Page,
		PerPage:  filters.PerPage,
		Total:    total,
		LastPage: lastPage,
	}, nil
}

// Update replaces a stored transaction
func (m *MockTransactionRepository) Update(transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Transactions[transaction.ID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if m.Categories != nil && stored.CategoryID != transaction.CategoryID {
		m.Categories.mu.Lock()
		m.Categories.TxRefCounts[stored.CategoryID]--
		m.Categories.TxRefCounts[transaction.CategoryID]++
		m.Categories.mu.Unlock()
	}
	t := *transaction
	t.UpdatedAt = time.Now().UTC()
	m.Transactions[t.ID] = &t
	return nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if m.Categories != nil {
		m.Categories.mu.Lock()
		m.Categories.TxRefCounts[t.CategoryID]--
		m.Categories.mu.Unlock()
	}
	delete(m.Transactions, id)
	return nil
}

// SumByCategoryType totals amounts of transactions whose category has the
// given type, optionally bounded by [from, to]
func (m *MockTransactionRepository) SumByCategoryType(ownerID uuid.UUID, categoryType domain.CategoryType, from, to *time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if from != nil && t.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && t.OccurredAt.After(*to) {
			continue
		}
		category, err := m.Categories.GetByID(t.CategoryID)
		if err != nil {
			continue
		}
		if category.Type != categoryType {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func matchesFilters(t *domain.Transaction, filters *domain.TransactionFilters) bool {
	if len(filters.CategoryIDs) > 0 {
		found := false
		for _, id := range filters.CategoryIDs {
			if t.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.AccountID != nil && t.AccountID != *filters.AccountID {
		return false
	}
	if filters.Search != "" {
		if t.MerchantName == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(*t.MerchantName), strings.ToLower(filters.Search)) {
			return false
		}
	}
	if filters.From != nil && t.OccurredAt.Before(*filters.From) {
		return false
	}
	if filters.To != nil && t.OccurredAt.After(*filters.To) {
		return false
	}
	return true
}

func sortTransactions(items []*domain.Transaction, sortBy domain.TransactionSortField, dir domain.SortDirection) {
	less := func(i, j int) bool {
		switch sortBy {
		case domain.SortByAmount:
			return items[i].Amount.LessThan(items[j].Amount)
		case domain.SortByCreatedAt:
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		case domain.SortByUpdatedAt:
			return items[i].UpdatedAt.Before(items[j].UpdatedAt)
		default:
			return items[i].OccurredAt.Before(items[j].OccurredAt)
		}
	}
	if dir == domain.SortDesc {
		sort.SliceStable(items, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(items, less)
}
