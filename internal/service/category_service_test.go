package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/moneta-app/moneta-backend/internal/testutil"
)

func newCategoryService(repo *testutil.MockCategoryRepository) *CategoryService {
	return NewCategoryService(repo, domain.NewGuard())
}

func systemCategory(repo *testutil.MockCategoryRepository, name string, categoryType domain.CategoryType) *domain.Category {
	c := &domain.Category{
		ID:       uuid.New(),
		Name:     name,
		Type:     categoryType,
		IsSystem: true,
	}
	repo.Add(c)
	return c
}

func userCategory(repo *testutil.MockCategoryRepository, ownerID uuid.UUID, name string, categoryType domain.CategoryType, parentID *uuid.UUID) *domain.Category {
	c := &domain.Category{
		ID:       uuid.New(),
		OwnerID:  &ownerID,
		Name:     name,
		Type:     categoryType,
		ParentID: parentID,
	}
	repo.Add(c)
	return c
}

func TestCreateCategory_Success(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()

	category, err := svc.CreateCategory(ownerID, CreateCategoryInput{
		Name: "Food",
		Type: domain.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if category.IsSystem {
		t.Error("Expected user category, got system")
	}
	if category.OwnerID == nil || *category.OwnerID != ownerID {
		t.Error("Expected category to be owned by the caller")
	}
	if category.Type != domain.CategoryTypeExpense {
		t.Errorf("Expected type expense, got %s", category.Type)
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	svc := newCategoryService(testutil.NewMockCategoryRepository())

	_, err := svc.CreateCategory(uuid.New(), CreateCategoryInput{Name: "   ", Type: domain.CategoryTypeIncome})
	if err != domain.ErrNameRequired {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
}

func TestCreateCategory_InvalidType(t *testing.T) {
	svc := newCategoryService(testutil.NewMockCategoryRepository())

	_, err := svc.CreateCategory(uuid.New(), CreateCategoryInput{Name: "Food", Type: "transfer"})
	if err != domain.ErrInvalidCategoryType {
		t.Errorf("Expected ErrInvalidCategoryType, got %v", err)
	}
}

func TestCreateCategory_WithSystemParent(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	parent := systemCategory(repo, "Food", domain.CategoryTypeExpense)

	category, err := svc.CreateCategory(ownerID, CreateCategoryInput{
		Name:     "Coffee",
		Type:     domain.CategoryTypeExpense,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.ParentID == nil || *category.ParentID != parent.ID {
		t.Error("Expected parent to be set")
	}
}

func TestCreateCategory_ParentNotFound(t *testing.T) {
	svc := newCategoryService(testutil.NewMockCategoryRepository())
	missing := uuid.New()

	_, err := svc.CreateCategory(uuid.New(), CreateCategoryInput{
		Name:     "Coffee",
		Type:     domain.CategoryTypeExpense,
		ParentID: &missing,
	})
	if err != domain.ErrParentNotFound {
		t.Errorf("Expected ErrParentNotFound, got %v", err)
	}
}

func TestCreateCategory_TypeMismatch(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	food := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)

	// Income child under an expense parent must be rejected.
	_, err := svc.CreateCategory(ownerID, CreateCategoryInput{
		Name:     "Snacks",
		Type:     domain.CategoryTypeIncome,
		ParentID: &food.ID,
	})
	if err != domain.ErrTypeMismatch {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
}

func TestCreateCategory_TypeMismatchBeforeAccessibility(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	otherOwner := uuid.New()
	parent := userCategory(repo, otherOwner, "Salary", domain.CategoryTypeIncome, nil)

	// Both type and accessibility are violated; the type check reports first.
	_, err := svc.CreateCategory(uuid.New(), CreateCategoryInput{
		Name:     "Coffee",
		Type:     domain.CategoryTypeExpense,
		ParentID: &parent.ID,
	})
	if err != domain.ErrTypeMismatch {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
}

func TestCreateCategory_ParentNotAccessible(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	otherOwner := uuid.New()
	parent := userCategory(repo, otherOwner, "Food", domain.CategoryTypeExpense, nil)

	_, err := svc.CreateCategory(uuid.New(), CreateCategoryInput{
		Name:     "Coffee",
		Type:     domain.CategoryTypeExpense,
		ParentID: &parent.ID,
	})
	if err != domain.ErrParentNotAccessible {
		t.Errorf("Expected ErrParentNotAccessible, got %v", err)
	}
}

func TestCreateCategory_DepthLimit(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	root := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)
	child := userCategory(repo, ownerID, "Coffee", domain.CategoryTypeExpense, &root.ID)

	// A subcategory cannot itself become a parent.
	_, err := svc.CreateCategory(ownerID, CreateCategoryInput{
		Name:     "Espresso",
		Type:     domain.CategoryTypeExpense,
		ParentID: &child.ID,
	})
	if err != domain.ErrCategoryDepthExceeded {
		t.Errorf("Expected ErrCategoryDepthExceeded, got %v", err)
	}
}

func TestUpdateCategory_NotFound(t *testing.T) {
	svc := newCategoryService(testutil.NewMockCategoryRepository())

	_, err := svc.UpdateCategory(uuid.New(), uuid.New(), UpdateCategoryInput{})
	if err != domain.ErrCategoryNotFound {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateCategory_SystemImmutable(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	system := systemCategory(repo, "Salary", domain.CategoryTypeIncome)

	name := "Renamed"
	_, err := svc.UpdateCategory(uuid.New(), system.ID, UpdateCategoryInput{Name: &name})
	if err != domain.ErrSystemImmutable {
		t.Errorf("Expected ErrSystemImmutable, got %v", err)
	}
}

func TestUpdateCategory_Unauthorized(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	category := userCategory(repo, uuid.New(), "Food", domain.CategoryTypeExpense, nil)

	name := "Renamed"
	_, err := svc.UpdateCategory(uuid.New(), category.ID, UpdateCategoryInput{Name: &name})
	if err != domain.ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateCategory_SelfParent(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	category := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)

	_, err := svc.UpdateCategory(ownerID, category.ID, UpdateCategoryInput{ParentID: &category.ID})
	if err != domain.ErrSelfParent {
		t.Errorf("Expected ErrSelfParent, got %v", err)
	}
}

func TestUpdateCategory_ReparentValidatesType(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	category := userCategory(repo, ownerID, "Coffee", domain.CategoryTypeExpense, nil)
	incomeParent := userCategory(repo, ownerID, "Salary", domain.CategoryTypeIncome, nil)

	_, err := svc.UpdateCategory(ownerID, category.ID, UpdateCategoryInput{ParentID: &incomeParent.ID})
	if err != domain.ErrTypeMismatch {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
}

func TestUpdateCategory_ReparentWithChildren(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	category := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)
	userCategory(repo, ownerID, "Coffee", domain.CategoryTypeExpense, &category.ID)
	newParent := userCategory(repo, ownerID, "Eating out", domain.CategoryTypeExpense, nil)

	// Moving a root that has children under another root would put the
	// children three levels deep.
	_, err := svc.UpdateCategory(ownerID, category.ID, UpdateCategoryInput{ParentID: &newParent.ID})
	if err != domain.ErrCategoryDepthExceeded {
		t.Errorf("Expected ErrCategoryDepthExceeded, got %v", err)
	}

	stored, _ := repo.GetByID(category.ID)
	if stored.ParentID != nil {
		t.Error("Expected category to remain a root after rejected move")
	}
}

func TestUpdateCategory_Success(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	category := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)
	parent := userCategory(repo, ownerID, "Eating out", domain.CategoryTypeExpense, nil)

	name := "Dining"
	updated, err := svc.UpdateCategory(ownerID, category.ID, UpdateCategoryInput{
		Name:     &name,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Name != "Dining" {
		t.Errorf("Expected name 'Dining', got %s", updated.Name)
	}
	if updated.ParentID == nil || *updated.ParentID != parent.ID {
		t.Error("Expected parent to change")
	}
}

func TestDeleteCategory_SystemImmutable(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	system := systemCategory(repo, "Salary", domain.CategoryTypeIncome)

	if err := svc.DeleteCategory(uuid.New(), system.ID); err != domain.ErrSystemImmutable {
		t.Errorf("Expected ErrSystemImmutable, got %v", err)
	}
}

func TestDeleteCategory_Unauthorized(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	category := userCategory(repo, uuid.New(), "Food", domain.CategoryTypeExpense, nil)

	if err := svc.DeleteCategory(uuid.New(), category.ID); err != domain.ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestDeleteCategory_HasChildren(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	root := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)
	userCategory(repo, ownerID, "Coffee", domain.CategoryTypeExpense, &root.ID)

	if err := svc.DeleteCategory(ownerID, root.ID); err != domain.ErrHasChildrenOrTransactions {
		t.Errorf("Expected ErrHasChildrenOrTransactions, got %v", err)
	}
}

func TestDeleteCategory_HasTransactions(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	category := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)
	repo.TxRefCounts[category.ID] = 1

	if err := svc.DeleteCategory(ownerID, category.ID); err != domain.ErrHasChildrenOrTransactions {
		t.Errorf("Expected ErrHasChildrenOrTransactions, got %v", err)
	}
}

func TestDeleteCategory_Success(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	category := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)

	if err := svc.DeleteCategory(ownerID, category.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := repo.GetByID(category.ID); err != domain.ErrCategoryNotFound {
		t.Error("Expected category to be deleted")
	}
}

func TestListForOwner_UnionOfSystemAndOwned(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()
	otherOwner := uuid.New()

	systemCategory(repo, "Salary", domain.CategoryTypeIncome)
	root := userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)
	userCategory(repo, ownerID, "Coffee", domain.CategoryTypeExpense, &root.ID)
	userCategory(repo, otherOwner, "Hidden", domain.CategoryTypeExpense, nil)

	categories, err := svc.ListForOwner(ownerID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("Expected 2 root categories, got %d", len(categories))
	}
	for _, c := range categories {
		if c.Name == "Hidden" {
			t.Error("Expected other user's category to be excluded")
		}
		if c.Name == "Food" && c.ChildCount != 1 {
			t.Errorf("Expected child count 1 for Food, got %d", c.ChildCount)
		}
	}
}

func TestListForOwner_TypeFilter(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	ownerID := uuid.New()

	systemCategory(repo, "Salary", domain.CategoryTypeIncome)
	userCategory(repo, ownerID, "Food", domain.CategoryTypeExpense, nil)

	income := domain.CategoryTypeIncome
	categories, err := svc.ListForOwner(ownerID, &income)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Salary" {
		t.Errorf("Expected only the income category, got %d entries", len(categories))
	}
}

func TestListForOwner_InvalidTypeFilter(t *testing.T) {
	svc := newCategoryService(testutil.NewMockCategoryRepository())

	bad := domain.CategoryType("transfer")
	if _, err := svc.ListForOwner(uuid.New(), &bad); err != domain.ErrInvalidCategoryType {
		t.Errorf("Expected ErrInvalidCategoryType, got %v", err)
	}
}

func TestGetCategory_SystemReadable(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	system := systemCategory(repo, "Salary", domain.CategoryTypeIncome)

	category, err := svc.GetCategory(uuid.New(), system.ID)
	if err != nil {
		t.Fatalf("Expected system category to be readable, got %v", err)
	}
	if category.ID != system.ID {
		t.Error("Expected the system category")
	}
}

func TestGetCategory_OtherOwnerDenied(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := newCategoryService(repo)
	category := userCategory(repo, uuid.New(), "Food", domain.CategoryTypeExpense, nil)

	if _, err := svc.GetCategory(uuid.New(), category.ID); err != domain.ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}
