package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "goalboard/contracts/mq"
	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/pkg/outbox"
)

// ParticipantRepository resolves board membership and manages participant
// rows. Role resolution always walks to the owning board and fails closed:
// a soft-deleted board yields no role for anyone.
type ParticipantRepository struct {
	db     *pgxpool.Pool
	ob     *outbox.Repository
	logger *zap.Logger
}

func NewParticipantRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, ob: ob, logger: logger}
}

func (r *ParticipantRepository) roleQuery(ctx context.Context, query string, userID, entityID int64) (model.Role, bool, error) {
	var role model.Role
	err := r.db.QueryRow(ctx, query, userID, entityID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, apperr.FromStorage(err)
	}
	return role, true, nil
}

// RoleOnBoard returns the caller's role on a live board.
func (r *ParticipantRepository) RoleOnBoard(ctx context.Context, userID, boardID int64) (model.Role, bool, error) {
	query := `
        SELECT p.role
        FROM board_participants p
        JOIN boards b ON b.id = p.board_id
        WHERE p.user_id = $1 AND p.board_id = $2 AND b.is_deleted = FALSE
    `
	return r.roleQuery(ctx, query, userID, boardID)
}

// RoleForCategory resolves the caller's role via category -> board.
func (r *ParticipantRepository) RoleForCategory(ctx context.Context, userID, categoryID int64) (model.Role, bool, error) {
	query := `
        SELECT p.role
        FROM board_participants p
        JOIN boards b ON b.id = p.board_id
        JOIN categories c ON c.board_id = p.board_id
        WHERE p.user_id = $1 AND c.id = $2 AND b.is_deleted = FALSE
    `
	return r.roleQuery(ctx, query, userID, categoryID)
}

// RoleForGoal resolves the caller's role via goal -> category -> board.
func (r *ParticipantRepository) RoleForGoal(ctx context.Context, userID, goalID int64) (model.Role, bool, error) {
	query := `
        SELECT p.role
        FROM board_participants p
        JOIN boards b ON b.id = p.board_id
        JOIN categories c ON c.board_id = p.board_id
        JOIN goals g ON g.category_id = c.id
        WHERE p.user_id = $1 AND g.id = $2 AND b.is_deleted = FALSE
    `
	return r.roleQuery(ctx, query, userID, goalID)
}

// RoleForComment resolves the caller's role via
// comment -> goal -> category -> board.
func (r *ParticipantRepository) RoleForComment(ctx context.Context, userID, commentID int64) (model.Role, bool, error) {
	query := `
        SELECT p.role
        FROM board_participants p
        JOIN boards b ON b.id = p.board_id
        JOIN categories c ON c.board_id = p.board_id
        JOIN goals g ON g.category_id = c.id
        JOIN comments cm ON cm.goal_id = g.id
        WHERE p.user_id = $1 AND cm.id = $2 AND b.is_deleted = FALSE
    `
	return r.roleQuery(ctx, query, userID, commentID)
}

// Insert adds a participant row and its grant event in one transaction.
// A duplicate (board, user) pair trips the unique constraint and surfaces
// as a conflict.
func (r *ParticipantRepository) Insert(ctx context.Context, actorID, boardID, userID int64, role model.Role) (*model.BoardParticipant, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	p := &model.BoardParticipant{BoardID: boardID, UserID: userID, Role: role}
	err = tx.QueryRow(ctx, `
        INSERT INTO board_participants (board_id, user_id, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `, boardID, userID, role).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert participant",
			zap.Int64("board_id", boardID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, apperr.FromStorage(err)
	}

	if err := r.insertGrantEvent(ctx, tx, actorID, p); err != nil {
		return nil, apperr.FromStorage(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return p, nil
}

// UpdateRole re-roles an existing non-owner participant.
func (r *ParticipantRepository) UpdateRole(ctx context.Context, actorID, boardID, userID int64, role model.Role) (*model.BoardParticipant, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	p := &model.BoardParticipant{BoardID: boardID, UserID: userID, Role: role}
	err = tx.QueryRow(ctx, `
        UPDATE board_participants
        SET role = $3, updated_at = NOW()
        WHERE board_id = $1 AND user_id = $2 AND role <> $4
        RETURNING id, created_at, updated_at
    `, boardID, userID, role, model.RoleOwner).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := r.insertGrantEvent(ctx, tx, actorID, p); err != nil {
		return nil, apperr.FromStorage(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return p, nil
}

func (r *ParticipantRepository) insertGrantEvent(ctx context.Context, tx pgx.Tx, actorID int64, p *model.BoardParticipant) error {
	payload := contracts.ParticipantGrantedPayload{
		BoardID:   p.BoardID,
		UserID:    p.UserID,
		GrantedBy: actorID,
		Role:      p.Role.String(),
	}
	return outbox.InsertEventInTx(ctx, tx, r.ob, "board", &p.BoardID, contracts.RoutingParticipantGranted, payload)
}

// Exists reports whether (board, user) already has a participant row,
// including the owner row.
func (r *ParticipantRepository) Exists(ctx context.Context, boardID, userID int64) (bool, model.Role, error) {
	var role model.Role
	err := r.db.QueryRow(ctx, `
        SELECT role FROM board_participants WHERE board_id = $1 AND user_id = $2
    `, boardID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, apperr.FromStorage(err)
	}
	return true, role, nil
}

// ListForBoard returns the participant rows of a board ordered by role.
func (r *ParticipantRepository) ListForBoard(ctx context.Context, boardID int64) ([]model.BoardParticipant, error) {
	query := `
        SELECT id, board_id, user_id, role, created_at, updated_at
        FROM board_participants
        WHERE board_id = $1
        ORDER BY role ASC, id ASC
    `
	rows, err := r.db.Query(ctx, query, boardID)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer rows.Close()

	participants := []model.BoardParticipant{}
	for rows.Next() {
		var p model.BoardParticipant
		if err := rows.Scan(&p.ID, &p.BoardID, &p.UserID, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.FromStorage(err)
		}
		participants = append(participants, p)
	}
	return participants, apperr.FromStorage(rows.Err())
}
