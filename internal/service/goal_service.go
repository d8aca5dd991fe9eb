package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/rbac"
	"goalboard/internal/repository"
)

// GoalCreate carries the writable fields of a new goal. Status and
// Priority default to ToDo and Medium when nil.
type GoalCreate struct {
	CategoryID  int64
	Title       string
	Description string
	Status      *model.Status
	Priority    *model.Priority
	DueDate     *time.Time
}

// GoalUpdate is a partial update, nil fields stay unchanged.
type GoalUpdate struct {
	CategoryID  *int64
	Title       *string
	Description *string
	Status      *model.Status
	Priority    *model.Priority
	DueDate     *time.Time
}

type GoalService struct {
	goals        GoalStore
	categories   CategoryStore
	participants ParticipantStore
	logger       *zap.Logger
}

func NewGoalService(goals GoalStore, categories CategoryStore, participants ParticipantStore, logger *zap.Logger) *GoalService {
	return &GoalService{goals: goals, categories: categories, participants: participants, logger: logger}
}

// CreateGoal adds a goal under a visible category. Requires owner or
// writer on the category's board. Goals cannot be created already
// archived.
func (s *GoalService) CreateGoal(ctx context.Context, userID int64, in GoalCreate) (*model.Goal, error) {
	if _, err := s.categories.GetForUser(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}
	role, found, err := s.participants.RoleForCategory(ctx, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	if !rbac.Allowed(role, rbac.ActionCreate, rbac.KindGoal) {
		return nil, apperr.Forbidden("create goal")
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	status := model.StatusToDo
	if in.Status != nil {
		status = *in.Status
	}
	priority := model.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}
	if !status.Valid() || status == model.StatusArchived {
		return nil, apperr.Validation("invalid status for a new goal")
	}
	if !priority.Valid() {
		return nil, apperr.Validation("invalid priority")
	}
	return s.goals.Insert(ctx, &model.Goal{
		CategoryID:  in.CategoryID,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
	})
}

// ListGoals returns non-archived goals visible to the user, filtered
// and ordered per the request.
func (s *GoalService) ListGoals(ctx context.Context, userID int64, filter repository.GoalsFilter, search string, ordering repository.Ordering) ([]model.Goal, error) {
	if filter.Status != nil && (!filter.Status.Valid() || *filter.Status == model.StatusArchived) {
		return nil, apperr.Validation("invalid status filter")
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, apperr.Validation("invalid priority filter")
	}
	return s.goals.ListForUser(ctx, userID, filter, search, ordering)
}

// GetGoal returns a single visible goal. Archived goals and goals
// outside the user's boards yield NotFound.
func (s *GoalService) GetGoal(ctx context.Context, userID, goalID int64) (*model.Goal, error) {
	return s.goals.GetForUser(ctx, userID, goalID)
}

// UpdateGoal applies a partial update. Owner or writer on the goal's
// board; moving the goal between categories additionally requires
// owner or writer on the target category's board.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID int64, in GoalUpdate) (*model.Goal, error) {
	g, err := s.goals.GetForUser(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	role, found, err := s.participants.RoleForGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	if !rbac.Allowed(role, rbac.ActionUpdate, rbac.KindGoal) {
		return nil, apperr.Forbidden("update goal")
	}
	if in.CategoryID != nil && *in.CategoryID != g.CategoryID {
		if _, err := s.categories.GetForUser(ctx, userID, *in.CategoryID); err != nil {
			return nil, err
		}
		targetRole, found, err := s.participants.RoleForCategory(ctx, userID, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, apperr.ErrNotFound
		}
		if !rbac.Allowed(targetRole, rbac.ActionUpdate, rbac.KindGoal) {
			return nil, apperr.Forbidden("move goal")
		}
		g.CategoryID = *in.CategoryID
	}
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		g.Title = *in.Title
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
		g.Description = *in.Description
	}
	if in.Status != nil && *in.Status != g.Status {
		if !g.Status.CanTransition(*in.Status) {
			return nil, apperr.Validation("cannot change status from %s to %s", g.Status, *in.Status)
		}
		g.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, apperr.Validation("invalid priority")
		}
		g.Priority = *in.Priority
	}
	if in.DueDate != nil {
		g.DueDate = in.DueDate
	}
	return s.goals.Update(ctx, g)
}

// DeleteGoal archives a goal. Owner or writer. Archived goals drop out
// of every listing, so a second delete yields NotFound.
func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID int64) (*model.Goal, error) {
	if _, err := s.goals.GetForUser(ctx, userID, goalID); err != nil {
		return nil, err
	}
	role, found, err := s.participants.RoleForGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	if !rbac.Allowed(role, rbac.ActionDelete, rbac.KindGoal) {
		return nil, apperr.Forbidden("delete goal")
	}
	return s.goals.Archive(ctx, userID, goalID)
}
