package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/moneta-app/moneta-backend/internal/service"
	"github.com/moneta-app/moneta-backend/internal/view"
	"github.com/moneta-app/moneta-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	publisher       websocket.EventPublisher
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, publisher websocket.EventPublisher) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		publisher:       publisher,
	}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parentId,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.CreateCategoryInput{
		Name:  req.Name,
		Type:  domain.CategoryType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return NewValidationError(c, "Invalid parent ID", []ValidationError{
				{Field: "parentId", Message: "Must be a valid UUID"},
			})
		}
		input.ParentID = &parentID
	}

	category, err := h.categoryService.CreateCategory(userID, input)
	if err != nil {
		if resp := categoryValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create category")
		return NewInternalError(c, "Failed to create category")
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", category.ID.String()).Str("name", category.Name).Msg("Category created")
	h.publisher.Publish(userID, websocket.CategoryCreated(view.NewCategory(category)))

	return c.JSON(http.StatusCreated, view.NewCategory(category))
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var typeFilter *domain.CategoryType
	if raw := c.QueryParam("type"); raw != "" {
		t := domain.CategoryType(raw)
		typeFilter = &t
	}

	roots, err := h.categoryService.ListForOwner(userID, typeFilter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCategoryType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: income, expense"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}

	var children []*domain.Category
	for _, root := range roots {
		if root.ChildCount == 0 {
			continue
		}
		sub, err := h.categoryService.ListChildren(root.ID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Str("category_id", root.ID.String()).Msg("Failed to list subcategories")
			return NewInternalError(c, "Failed to list categories")
		}
		children = append(children, sub...)
	}

	return c.JSON(http.StatusOK, view.NewCategoryTree(roots, children))
}

// GetCategory handles GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategory(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Category belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Failed to get category")
		return NewInternalError(c, "Failed to get category")
	}

	return c.JSON(http.StatusOK, view.NewCategory(category))
}

// GetCategoryChildren handles GET /api/v1/categories/:id/children
func (h *CategoryHandler) GetCategoryChildren(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	// Access check runs through GetCategory first.
	if _, err := h.categoryService.GetCategory(userID, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Category belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Failed to get category")
		return NewInternalError(c, "Failed to get category")
	}

	children, err := h.categoryService.ListChildren(id)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Failed to list subcategories")
		return NewInternalError(c, "Failed to list subcategories")
	}

	out := make([]*view.Category, len(children))
	for i, child := range children {
		out[i] = view.NewCategory(child)
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateCategoryInput{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return NewValidationError(c, "Invalid parent ID", []ValidationError{
				{Field: "parentId", Message: "Must be a valid UUID"},
			})
		}
		input.ParentID = &parentID
	}

	category, err := h.categoryService.UpdateCategory(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrSystemImmutable) {
			return NewForbiddenError(c, "System categories cannot be modified")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Category belongs to another user")
		}
		if resp := categoryValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Failed to update category")
		return NewInternalError(c, "Failed to update category")
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", category.ID.String()).Msg("Category updated")
	h.publisher.Publish(userID, websocket.CategoryUpdated(view.NewCategory(category)))

	return c.JSON(http.StatusOK, view.NewCategory(category))
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(userID, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrSystemImmutable) {
			return NewForbiddenError(c, "System categories cannot be deleted")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewForbiddenError(c, "Category belongs to another user")
		}
		if errors.Is(err, domain.ErrHasChildrenOrTransactions) {
			return NewConflictError(c, "Category still has subcategories or transactions")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Failed to delete category")
		return NewInternalError(c, "Failed to delete category")
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Category deleted")
	h.publisher.Publish(userID, websocket.CategoryDeleted(map[string]string{"id": id.String()}))

	return c.NoContent(http.StatusNoContent)
}

// categoryValidationResponse maps category validation errors to 400 problem
// responses. Returns nil when err is not a validation error.
func categoryValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidCategoryType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense"},
		})
	case errors.Is(err, domain.ErrParentNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "parentId", Message: "Parent category does not exist"},
		})
	case errors.Is(err, domain.ErrTypeMismatch):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "parentId", Message: "Parent category must have the same type"},
		})
	case errors.Is(err, domain.ErrParentNotAccessible):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "parentId", Message: "Parent category is not accessible"},
		})
	case errors.Is(err, domain.ErrSelfParent):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "parentId", Message: "Category cannot be its own parent"},
		})
	case errors.Is(err, domain.ErrCategoryDepthExceeded):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "parentId", Message: "Subcategories cannot have their own subcategories"},
		})
	}
	return nil
}
