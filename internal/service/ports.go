package service

import (
	"context"

	"goalboard/internal/model"
	"goalboard/internal/repository"
)

// Storage ports implemented by internal/repository (and its cache
// wrappers). Services depend on these so tests can substitute in-memory
// stores. All methods return apperr-mapped errors.

type BoardStore interface {
	CreateWithOwner(ctx context.Context, userID int64, title string) (*model.Board, error)
	ListForUser(ctx context.Context, userID int64, ordering repository.Ordering) ([]model.Board, error)
	GetForUser(ctx context.Context, userID, boardID int64) (*model.Board, error)
	UpdateTitle(ctx context.Context, actorID, boardID int64, title string) (*model.Board, error)
	SoftDeleteCascade(ctx context.Context, actorID, boardID int64) (*model.Board, error)
}

type ParticipantStore interface {
	RoleOnBoard(ctx context.Context, userID, boardID int64) (model.Role, bool, error)
	RoleForCategory(ctx context.Context, userID, categoryID int64) (model.Role, bool, error)
	RoleForGoal(ctx context.Context, userID, goalID int64) (model.Role, bool, error)
	RoleForComment(ctx context.Context, userID, commentID int64) (model.Role, bool, error)
	Insert(ctx context.Context, actorID, boardID, userID int64, role model.Role) (*model.BoardParticipant, error)
	UpdateRole(ctx context.Context, actorID, boardID, userID int64, role model.Role) (*model.BoardParticipant, error)
	Exists(ctx context.Context, boardID, userID int64) (bool, model.Role, error)
	ListForBoard(ctx context.Context, boardID int64) ([]model.BoardParticipant, error)
}

type CategoryStore interface {
	Insert(ctx context.Context, userID, boardID int64, title string) (*model.Category, error)
	ListForUser(ctx context.Context, userID int64, boardID *int64, search string, ordering repository.Ordering) ([]model.Category, error)
	GetForUser(ctx context.Context, userID, categoryID int64) (*model.Category, error)
	UpdateTitle(ctx context.Context, actorID, categoryID int64, title string) (*model.Category, error)
	SoftDeleteCascade(ctx context.Context, actorID, categoryID int64) (*model.Category, error)
}

type GoalStore interface {
	Insert(ctx context.Context, g *model.Goal) (*model.Goal, error)
	ListForUser(ctx context.Context, userID int64, filter repository.GoalsFilter, search string, ordering repository.Ordering) ([]model.Goal, error)
	GetForUser(ctx context.Context, userID, goalID int64) (*model.Goal, error)
	Update(ctx context.Context, g *model.Goal) (*model.Goal, error)
	Archive(ctx context.Context, actorID, goalID int64) (*model.Goal, error)
}

type CommentStore interface {
	Insert(ctx context.Context, userID, goalID int64, text string) (*model.Comment, error)
	ListForUser(ctx context.Context, userID int64, goalID *int64, ordering repository.Ordering) ([]model.Comment, error)
	GetForUser(ctx context.Context, userID, commentID int64) (*model.Comment, error)
	UpdateText(ctx context.Context, commentID int64, text string) (*model.Comment, error)
	Delete(ctx context.Context, actorID, commentID int64) error
}

// boardCacheEvictor is implemented by the caching board store; grants
// change who sees a board, so the wrapper must drop stale listings.
type boardCacheEvictor interface {
	EvictBoard(ctx context.Context, boardID int64, extraUsers ...int64)
}
