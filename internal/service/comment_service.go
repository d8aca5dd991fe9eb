package service

import (
	"context"

	"go.uber.org/zap"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/repository"
)

type CommentService struct {
	comments CommentStore
	goals    GoalStore
	logger   *zap.Logger
}

func NewCommentService(comments CommentStore, goals GoalStore, logger *zap.Logger) *CommentService {
	return &CommentService{comments: comments, goals: goals, logger: logger}
}

// CreateComment attaches a comment to a visible goal. Any participant
// of the goal's board may comment, readers included.
func (s *CommentService) CreateComment(ctx context.Context, userID, goalID int64, text string) (*model.Comment, error) {
	if _, err := s.goals.GetForUser(ctx, userID, goalID); err != nil {
		return nil, err
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	return s.comments.Insert(ctx, userID, goalID, text)
}

// ListComments returns comments on goals visible to the user, newest
// first by default.
func (s *CommentService) ListComments(ctx context.Context, userID int64, goalID *int64, ordering repository.Ordering) ([]model.Comment, error) {
	return s.comments.ListForUser(ctx, userID, goalID, ordering)
}

func (s *CommentService) GetComment(ctx context.Context, userID, commentID int64) (*model.Comment, error) {
	return s.comments.GetForUser(ctx, userID, commentID)
}

// UpdateComment edits a comment's text. Only the comment's author may
// edit it, regardless of board role.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID int64, text string) (*model.Comment, error) {
	cm, err := s.comments.GetForUser(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if cm.UserID != userID {
		return nil, apperr.Forbidden("edit another user's comment")
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	return s.comments.UpdateText(ctx, commentID, text)
}

// DeleteComment removes a comment permanently. Author only, even the
// board owner cannot delete someone else's comment.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	cm, err := s.comments.GetForUser(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if cm.UserID != userID {
		return apperr.Forbidden("delete another user's comment")
	}
	return s.comments.Delete(ctx, userID, commentID)
}
