package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "goalboard/contracts/mq"
	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/pkg/outbox"
)

// commentVisibility scopes comments to goals the caller can see: board
// membership, live chain, goal not archived.
const commentVisibility = `
        JOIN goals g ON g.id = cm.goal_id
        JOIN categories c ON c.id = g.category_id
        JOIN boards b ON b.id = c.board_id
        JOIN board_participants p ON p.board_id = c.board_id
        WHERE p.user_id = $1
          AND c.is_deleted = FALSE
          AND b.is_deleted = FALSE
          AND g.status < $2
`

type CommentRepository struct {
	db     *pgxpool.Pool
	ob     *outbox.Repository
	logger *zap.Logger
}

func NewCommentRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{db: db, ob: ob, logger: logger}
}

func (r *CommentRepository) Insert(ctx context.Context, userID, goalID int64, text string) (*model.Comment, error) {
	defer observe(time.Now(), "insert", "comments")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	cm := &model.Comment{UserID: userID, GoalID: goalID, Text: text}
	err = tx.QueryRow(ctx, `
        INSERT INTO comments (user_id, goal_id, text)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `, userID, goalID, text).Scan(&cm.ID, &cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.CommentCreatedPayload{CommentID: cm.ID, GoalID: goalID, UserID: userID}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "comment", &cm.ID, contracts.RoutingCommentCreated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return cm, nil
}

// ListForUser returns visible comments, newest first by default,
// optionally restricted to one goal.
func (r *CommentRepository) ListForUser(ctx context.Context, userID int64, goalID *int64, ordering Ordering) ([]model.Comment, error) {
	defer observe(time.Now(), "select", "comments")

	orderBy := "cm.created_at DESC"
	if ordering == OrderByCreated {
		orderBy = "cm.created_at ASC"
	}

	query := `
        SELECT cm.id, cm.user_id, cm.goal_id, cm.text, cm.created_at, cm.updated_at
        FROM comments cm` + commentVisibility
	args := []any{userID, model.StatusArchived}
	if goalID != nil {
		args = append(args, *goalID)
		query += fmt.Sprintf(" AND cm.goal_id = $%d", len(args))
	}
	query += " ORDER BY " + orderBy

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.UserID, &cm.GoalID, &cm.Text, &cm.CreatedAt, &cm.UpdatedAt); err != nil {
			return nil, apperr.FromStorage(err)
		}
		comments = append(comments, cm)
	}
	return comments, apperr.FromStorage(rows.Err())
}

func (r *CommentRepository) GetForUser(ctx context.Context, userID, commentID int64) (*model.Comment, error) {
	defer observe(time.Now(), "select", "comments")

	var cm model.Comment
	err := r.db.QueryRow(ctx, `
        SELECT cm.id, cm.user_id, cm.goal_id, cm.text, cm.created_at, cm.updated_at
        FROM comments cm`+commentVisibility+` AND cm.id = $3
    `, userID, model.StatusArchived, commentID).
		Scan(&cm.ID, &cm.UserID, &cm.GoalID, &cm.Text, &cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &cm, nil
}

func (r *CommentRepository) UpdateText(ctx context.Context, commentID int64, text string) (*model.Comment, error) {
	defer observe(time.Now(), "update", "comments")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	cm := &model.Comment{ID: commentID, Text: text}
	err = tx.QueryRow(ctx, `
        UPDATE comments
        SET text = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING user_id, goal_id, created_at, updated_at
    `, commentID, text).Scan(&cm.UserID, &cm.GoalID, &cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.CommentUpdatedPayload{CommentID: commentID, UserID: cm.UserID}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "comment", &commentID, contracts.RoutingCommentUpdated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return cm, nil
}

// Delete removes the comment row. Comments are leaf entities with no
// dependents, so this is the one genuinely hard delete in the system.
func (r *CommentRepository) Delete(ctx context.Context, actorID, commentID int64) error {
	defer observe(time.Now(), "delete", "comments")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	var goalID int64
	err = tx.QueryRow(ctx, `
        DELETE FROM comments WHERE id = $1 RETURNING goal_id
    `, commentID).Scan(&goalID)
	if err != nil {
		return apperr.FromStorage(err)
	}

	payload := contracts.CommentDeletedPayload{CommentID: commentID, GoalID: goalID, UserID: actorID}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "comment", &commentID, contracts.RoutingCommentDeleted, payload); err != nil {
		return apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromStorage(err)
	}

	r.logger.Info("Comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("user_id", actorID),
	)
	return nil
}
