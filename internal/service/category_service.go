package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
)

// CategoryService owns the category tree: creation, type/depth validation and
// deletion guards.
type CategoryService struct {
	categoryRepo domain.CategoryRepository
	guard        domain.OwnershipGuard
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, guard domain.OwnershipGuard) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, guard: guard}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name     string
	Type     domain.CategoryType
	ParentID *uuid.UUID
	Icon     *string
	Color    *string
}

// CreateCategory creates a user-owned category. Parent checks run in a fixed
// order (not found, type mismatch, accessibility, depth) so the reported
// error is deterministic when several rules are violated at once.
func (s *CategoryService) CreateCategory(ownerID uuid.UUID, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	if !input.Type.Valid() {
		return nil, domain.ErrInvalidCategoryType
	}

	if input.ParentID != nil {
		if err := s.validateParent(ownerID, *input.ParentID, input.Type); err != nil {
			return nil, err
		}
	}

	category := &domain.Category{
		OwnerID:  &ownerID,
		Name:     name,
		Type:     input.Type,
		ParentID: input.ParentID,
		Icon:     input.Icon,
		Color:    input.Color,
		IsSystem: false,
	}

	return s.categoryRepo.Create(category)
}

// UpdateCategoryInput holds the patch for updating a category. Nil fields are
// left unchanged. Owner and system flags are never patchable.
type UpdateCategoryInput struct {
	Name     *string
	ParentID *uuid.UUID
	Icon     *string
	Color    *string
}

// UpdateCategory updates a user-owned category
func (s *CategoryService) UpdateCategory(ownerID uuid.UUID, id uuid.UUID, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if category.IsSystem {
		return nil, domain.ErrSystemImmutable
	}
	if err := s.guard.CanWrite(ownerID, category.OwnerID); err != nil {
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
		category.Name = name
	}

	// Re-parenting revalidates the same rules as create, plus self-reference.
	if input.ParentID != nil && (category.ParentID == nil || *input.ParentID != *category.ParentID) {
		if *input.ParentID == category.ID {
			return nil, domain.ErrSelfParent
		}
		if err := s.validateParent(ownerID, *input.ParentID, category.Type); err != nil {
			return nil, err
		}
		// Moving a category that has children under a parent would create a
		// three-level chain.
		hasChildren, err := s.categoryRepo.HasChildren(category.ID)
		if err != nil {
			return nil, err
		}
		if hasChildren {
			return nil, domain.ErrCategoryDepthExceeded
		}
		category.ParentID = input.ParentID
	}

	if input.Icon != nil {
		category.Icon = input.Icon
	}
	if input.Color != nil {
		category.Color = input.Color
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a user-owned category. Categories that still have
// subcategories or referencing transactions cannot be deleted.
func (s *CategoryService) DeleteCategory(ownerID uuid.UUID, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}

	if category.IsSystem {
		return domain.ErrSystemImmutable
	}
	if err := s.guard.CanWrite(ownerID, category.OwnerID); err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(id)
	if err != nil {
		return err
	}
	if hasChildren {
		return domain.ErrHasChildrenOrTransactions
	}

	hasTx, err := s.categoryRepo.HasTransactions(id)
	if err != nil {
		return err
	}
	if hasTx {
		return domain.ErrHasChildrenOrTransactions
	}

	return s.categoryRepo.Delete(id)
}

// GetCategory retrieves a single category accessible to the owner
func (s *CategoryService) GetCategory(ownerID uuid.UUID, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.guard.CanRead(ownerID, category.OwnerID) {
		return nil, domain.ErrUnauthorized
	}
	return category, nil
}

// ListForOwner returns the union of system and owner root categories, each
// annotated with its child count, optionally filtered by type.
func (s *CategoryService) ListForOwner(ownerID uuid.UUID, categoryType *domain.CategoryType) ([]*domain.CategoryWithChildCount, error) {
	if categoryType != nil && !categoryType.Valid() {
		return nil, domain.ErrInvalidCategoryType
	}
	return s.categoryRepo.ListRootsForOwner(ownerID, &domain.CategoryFilters{Type: categoryType})
}

// ListChildren returns the subcategories of a parent category
func (s *CategoryService) ListChildren(parentID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.ListChildren(parentID)
}

// validateParent runs the fixed-order parent checks shared by create and
// re-parenting updates.
func (s *CategoryService) validateParent(ownerID uuid.UUID, parentID uuid.UUID, categoryType domain.CategoryType) error {
	parent, err := s.categoryRepo.GetByID(parentID)
	if err != nil {
		if err == domain.ErrCategoryNotFound {
			return domain.ErrParentNotFound
		}
		return err
	}

	if parent.Type != categoryType {
		return domain.ErrTypeMismatch
	}

	if !s.guard.CanRead(ownerID, parent.OwnerID) {
		return domain.ErrParentNotAccessible
	}

	// Max tree depth is two levels: a subcategory cannot be a parent.
	if parent.ParentID != nil {
		return domain.ErrCategoryDepthExceeded
	}

	return nil
}
