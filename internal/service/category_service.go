package service

import (
	"context"

	"go.uber.org/zap"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/rbac"
	"goalboard/internal/repository"
)

type CategoryService struct {
	categories   CategoryStore
	participants ParticipantStore
	logger       *zap.Logger
}

func NewCategoryService(categories CategoryStore, participants ParticipantStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, participants: participants, logger: logger}
}

// CreateCategory adds a category to a board. Requires owner or writer
// on the board; boards invisible to the user yield NotFound.
func (s *CategoryService) CreateCategory(ctx context.Context, userID, boardID int64, title string) (*model.Category, error) {
	role, found, err := s.participants.RoleOnBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	if !rbac.Allowed(role, rbac.ActionCreate, rbac.KindCategory) {
		return nil, apperr.Forbidden("create category")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return s.categories.Insert(ctx, userID, boardID, title)
}

// ListCategories returns non-deleted categories on live boards the user
// belongs to, optionally restricted to one board or a title search.
func (s *CategoryService) ListCategories(ctx context.Context, userID int64, boardID *int64, search string, ordering repository.Ordering) ([]model.Category, error) {
	return s.categories.ListForUser(ctx, userID, boardID, search, ordering)
}

func (s *CategoryService) GetCategory(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	return s.categories.GetForUser(ctx, userID, categoryID)
}

// UpdateCategory renames a category. Owner or writer.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, categoryID int64, title string) (*model.Category, error) {
	if _, err := s.categories.GetForUser(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, categoryID, rbac.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return s.categories.UpdateTitle(ctx, userID, categoryID, title)
}

// DeleteCategory soft-deletes a category and archives its goals in one
// transaction. Owner or writer.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	if _, err := s.categories.GetForUser(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, categoryID, rbac.ActionDelete); err != nil {
		return nil, err
	}
	return s.categories.SoftDeleteCascade(ctx, userID, categoryID)
}

func (s *CategoryService) authorize(ctx context.Context, userID, categoryID int64, action rbac.Action) error {
	role, found, err := s.participants.RoleForCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.ErrNotFound
	}
	if !rbac.Allowed(role, action, rbac.KindCategory) {
		return apperr.Forbidden(action.String() + " category")
	}
	return nil
}
