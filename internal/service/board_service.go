package service

import (
	"context"

	"go.uber.org/zap"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/rbac"
	"goalboard/internal/repository"
)

// BoardService owns board lifecycle and participant management.
type BoardService struct {
	boards       BoardStore
	participants ParticipantStore
	logger       *zap.Logger
}

func NewBoardService(boards BoardStore, participants ParticipantStore, logger *zap.Logger) *BoardService {
	return &BoardService{boards: boards, participants: participants, logger: logger}
}

// CreateBoard creates a board and enrolls the creator as its owner in
// the same transaction.
func (s *BoardService) CreateBoard(ctx context.Context, userID int64, title string) (*model.Board, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return s.boards.CreateWithOwner(ctx, userID, title)
}

// ListBoards returns the non-deleted boards the user participates in,
// under any role.
func (s *BoardService) ListBoards(ctx context.Context, userID int64, ordering repository.Ordering) ([]model.Board, error) {
	return s.boards.ListForUser(ctx, userID, ordering)
}

// GetBoard returns a single board. Boards outside the user's
// membership, and deleted boards, surface as NotFound.
func (s *BoardService) GetBoard(ctx context.Context, userID, boardID int64) (*model.Board, error) {
	return s.boards.GetForUser(ctx, userID, boardID)
}

// UpdateBoard renames a board. Owner only.
func (s *BoardService) UpdateBoard(ctx context.Context, userID, boardID int64, title string) (*model.Board, error) {
	if _, err := s.boards.GetForUser(ctx, userID, boardID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, boardID, rbac.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return s.boards.UpdateTitle(ctx, userID, boardID, title)
}

// DeleteBoard soft-deletes a board, soft-deletes its categories and
// archives every goal under them in one transaction. Owner only.
// Repeating the call yields NotFound, the deleted board is no longer
// visible.
func (s *BoardService) DeleteBoard(ctx context.Context, userID, boardID int64) (*model.Board, error) {
	if _, err := s.boards.GetForUser(ctx, userID, boardID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, boardID, rbac.ActionDelete); err != nil {
		return nil, err
	}
	return s.boards.SoftDeleteCascade(ctx, userID, boardID)
}

// GrantParticipant adds a user to the board as writer or reader, or
// changes an existing writer/reader grant. Only the owner may grant,
// and the owner role itself is never grantable or reassignable.
func (s *BoardService) GrantParticipant(ctx context.Context, actorID, boardID, targetUserID int64, role model.Role) (*model.BoardParticipant, error) {
	if _, err := s.boards.GetForUser(ctx, actorID, boardID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, boardID, rbac.ActionUpdate); err != nil {
		return nil, err
	}
	if role != model.RoleWriter && role != model.RoleReader {
		return nil, apperr.Validation("role must be writer or reader")
	}
	exists, current, err := s.participants.Exists(ctx, boardID, targetUserID)
	if err != nil {
		return nil, err
	}
	if exists {
		if current == model.RoleOwner {
			return nil, apperr.Validation("the owner role cannot be reassigned")
		}
		p, err := s.participants.UpdateRole(ctx, actorID, boardID, targetUserID, role)
		if err != nil {
			return nil, err
		}
		s.evict(ctx, boardID, targetUserID)
		return p, nil
	}
	p, err := s.participants.Insert(ctx, actorID, boardID, targetUserID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("participant granted",
		zap.Int64("board_id", boardID),
		zap.Int64("user_id", targetUserID),
		zap.String("role", role.String()))
	s.evict(ctx, boardID, targetUserID)
	return p, nil
}

// ListParticipants returns every participant of a board the caller is
// a member of, owner first.
func (s *BoardService) ListParticipants(ctx context.Context, userID, boardID int64) ([]model.BoardParticipant, error) {
	if _, err := s.boards.GetForUser(ctx, userID, boardID); err != nil {
		return nil, err
	}
	return s.participants.ListForBoard(ctx, boardID)
}

func (s *BoardService) authorize(ctx context.Context, userID, boardID int64, action rbac.Action) error {
	role, found, err := s.participants.RoleOnBoard(ctx, userID, boardID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.ErrNotFound
	}
	if !rbac.Allowed(role, action, rbac.KindBoard) {
		return apperr.Forbidden(action.String() + " board")
	}
	return nil
}

func (s *BoardService) evict(ctx context.Context, boardID int64, users ...int64) {
	if ev, ok := s.boards.(boardCacheEvictor); ok {
		ev.EvictBoard(ctx, boardID, users...)
	}
}
