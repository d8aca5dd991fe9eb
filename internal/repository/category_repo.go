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
	"goalboard/pkg/metrics"
	"goalboard/pkg/outbox"
)

var categoryOrderings = map[Ordering]string{
	OrderDefault:   "c.title ASC",
	OrderByTitle:   "c.title ASC",
	OrderByCreated: "c.created_at ASC",
}

type CategoryRepository struct {
	db     *pgxpool.Pool
	ob     *outbox.Repository
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, ob: ob, logger: logger}
}

func (r *CategoryRepository) Insert(ctx context.Context, userID, boardID int64, title string) (*model.Category, error) {
	defer observe(time.Now(), "insert", "categories")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	c := &model.Category{UserID: userID, BoardID: boardID, Title: title}
	err = tx.QueryRow(ctx, `
        INSERT INTO categories (user_id, board_id, title)
        VALUES ($1, $2, $3)
        RETURNING id, is_deleted, created_at, updated_at
    `, userID, boardID, title).Scan(&c.ID, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.CategoryCreatedPayload{CategoryID: c.ID, BoardID: boardID, UserID: userID, Title: title}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "category", &c.ID, contracts.RoutingCategoryCreated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}

	r.logger.Info("Category created",
		zap.Int64("category_id", c.ID),
		zap.Int64("board_id", boardID),
		zap.Int64("user_id", userID),
	)
	return c, nil
}

// ListForUser returns live categories on boards where the caller is a
// participant, optionally restricted to one board and a title search.
func (r *CategoryRepository) ListForUser(ctx context.Context, userID int64, boardID *int64, search string, ordering Ordering) ([]model.Category, error) {
	defer observe(time.Now(), "select", "categories")

	orderBy, ok := categoryOrderings[ordering]
	if !ok {
		orderBy = categoryOrderings[OrderDefault]
	}

	query := `
        SELECT c.id, c.user_id, c.board_id, c.title, c.is_deleted, c.created_at, c.updated_at
        FROM categories c
        JOIN boards b ON b.id = c.board_id
        JOIN board_participants p ON p.board_id = c.board_id
        WHERE p.user_id = $1 AND c.is_deleted = FALSE AND b.is_deleted = FALSE
    `
	args := []any{userID}
	if boardID != nil {
		args = append(args, *boardID)
		query += fmt.Sprintf(" AND c.board_id = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND c.title ILIKE $%d", len(args))
	}
	query += " ORDER BY " + orderBy

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.BoardID, &c.Title, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.FromStorage(err)
		}
		categories = append(categories, c)
	}
	return categories, apperr.FromStorage(rows.Err())
}

func (r *CategoryRepository) GetForUser(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	defer observe(time.Now(), "select", "categories")

	var c model.Category
	err := r.db.QueryRow(ctx, `
        SELECT c.id, c.user_id, c.board_id, c.title, c.is_deleted, c.created_at, c.updated_at
        FROM categories c
        JOIN boards b ON b.id = c.board_id
        JOIN board_participants p ON p.board_id = c.board_id
        WHERE p.user_id = $1 AND c.id = $2 AND c.is_deleted = FALSE AND b.is_deleted = FALSE
    `, userID, categoryID).Scan(&c.ID, &c.UserID, &c.BoardID, &c.Title, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &c, nil
}

// UpdateTitle renames a live category. The board reference never changes.
func (r *CategoryRepository) UpdateTitle(ctx context.Context, actorID, categoryID int64, title string) (*model.Category, error) {
	defer observe(time.Now(), "update", "categories")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	c := &model.Category{ID: categoryID, Title: title}
	err = tx.QueryRow(ctx, `
        UPDATE categories
        SET title = $2, updated_at = NOW()
        WHERE id = $1 AND is_deleted = FALSE
        RETURNING user_id, board_id, is_deleted, created_at, updated_at
    `, categoryID, title).Scan(&c.UserID, &c.BoardID, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.CategoryUpdatedPayload{CategoryID: categoryID, UserID: actorID, Title: title}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "category", &categoryID, contracts.RoutingCategoryUpdated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return c, nil
}

// SoftDeleteCascade flags the category deleted and archives every goal
// under it, atomically.
func (r *CategoryRepository) SoftDeleteCascade(ctx context.Context, actorID, categoryID int64) (*model.Category, error) {
	defer observe(time.Now(), "update", "categories")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	c := &model.Category{ID: categoryID, IsDeleted: true}
	err = tx.QueryRow(ctx, `
        UPDATE categories
        SET is_deleted = TRUE, updated_at = NOW()
        WHERE id = $1 AND is_deleted = FALSE
        RETURNING user_id, board_id, title, created_at, updated_at
    `, categoryID).Scan(&c.UserID, &c.BoardID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE goals
        SET status = $2, updated_at = NOW()
        WHERE category_id = $1
    `, categoryID, model.StatusArchived); err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.CategoryDeletedPayload{CategoryID: categoryID, BoardID: c.BoardID, UserID: actorID}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "category", &categoryID, contracts.RoutingCategoryDeleted, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}

	metrics.IncrementCascade("category")
	r.logger.Info("Category soft-deleted",
		zap.Int64("category_id", categoryID),
		zap.Int64("user_id", actorID),
	)
	return c, nil
}
