package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "goalboard/contracts/mq"
	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/pkg/metrics"
	"goalboard/pkg/outbox"
)

var boardOrderings = map[Ordering]string{
	OrderDefault:   "b.title ASC",
	OrderByTitle:   "b.title ASC",
	OrderByCreated: "b.created_at ASC",
}

// BoardRepository persists boards. Every mutation runs in a single
// transaction together with its outbox event, so a committed change is
// never observable without the event and a failed cascade leaves nothing
// behind.
type BoardRepository struct {
	db     *pgxpool.Pool
	ob     *outbox.Repository
	logger *zap.Logger
}

func NewBoardRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *BoardRepository {
	return &BoardRepository{db: db, ob: ob, logger: logger}
}

// CreateWithOwner inserts the board and its owner participant as one unit.
// A board must never exist without its owning participant.
func (r *BoardRepository) CreateWithOwner(ctx context.Context, userID int64, title string) (*model.Board, error) {
	defer observe(time.Now(), "insert", "boards")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	board := &model.Board{Title: title}
	err = tx.QueryRow(ctx, `
        INSERT INTO boards (title)
        VALUES ($1)
        RETURNING id, is_deleted, created_at, updated_at
    `, title).Scan(&board.ID, &board.IsDeleted, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO board_participants (board_id, user_id, role)
        VALUES ($1, $2, $3)
    `, board.ID, userID, model.RoleOwner)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.BoardCreatedPayload{BoardID: board.ID, UserID: userID, Title: title}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "board", &board.ID, contracts.RoutingBoardCreated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}

	r.logger.Info("Board created",
		zap.Int64("board_id", board.ID),
		zap.Int64("user_id", userID),
	)
	return board, nil
}

// ListForUser returns the caller's live boards.
func (r *BoardRepository) ListForUser(ctx context.Context, userID int64, ordering Ordering) ([]model.Board, error) {
	defer observe(time.Now(), "select", "boards")

	orderBy, ok := boardOrderings[ordering]
	if !ok {
		orderBy = boardOrderings[OrderDefault]
	}
	query := `
        SELECT b.id, b.title, b.is_deleted, b.created_at, b.updated_at
        FROM boards b
        JOIN board_participants p ON p.board_id = b.id
        WHERE p.user_id = $1 AND b.is_deleted = FALSE
        ORDER BY ` + orderBy

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer rows.Close()

	boards := []model.Board{}
	for rows.Next() {
		var b model.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, apperr.FromStorage(err)
		}
		boards = append(boards, b)
	}
	return boards, apperr.FromStorage(rows.Err())
}

// GetForUser returns one live board visible to the caller. Boards outside
// the caller's membership come back as not found, never as forbidden.
func (r *BoardRepository) GetForUser(ctx context.Context, userID, boardID int64) (*model.Board, error) {
	defer observe(time.Now(), "select", "boards")

	var b model.Board
	err := r.db.QueryRow(ctx, `
        SELECT b.id, b.title, b.is_deleted, b.created_at, b.updated_at
        FROM boards b
        JOIN board_participants p ON p.board_id = b.id
        WHERE p.user_id = $1 AND b.id = $2 AND b.is_deleted = FALSE
    `, userID, boardID).Scan(&b.ID, &b.Title, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &b, nil
}

// UpdateTitle renames a live board.
func (r *BoardRepository) UpdateTitle(ctx context.Context, actorID, boardID int64, title string) (*model.Board, error) {
	defer observe(time.Now(), "update", "boards")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	b := &model.Board{ID: boardID, Title: title}
	err = tx.QueryRow(ctx, `
        UPDATE boards
        SET title = $2, updated_at = NOW()
        WHERE id = $1 AND is_deleted = FALSE
        RETURNING is_deleted, created_at, updated_at
    `, boardID, title).Scan(&b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.BoardUpdatedPayload{BoardID: boardID, UserID: actorID, Title: title}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "board", &boardID, contracts.RoutingBoardUpdated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return b, nil
}

// SoftDeleteCascade flags the board deleted, flags all its categories
// deleted and archives every goal under the board, atomically. Goals are
// archived by board id alone: goals whose category was already
// soft-deleted are archived again on purpose.
func (r *BoardRepository) SoftDeleteCascade(ctx context.Context, actorID, boardID int64) (*model.Board, error) {
	defer observe(time.Now(), "update", "boards")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	b := &model.Board{ID: boardID, IsDeleted: true}
	err = tx.QueryRow(ctx, `
        UPDATE boards
        SET is_deleted = TRUE, updated_at = NOW()
        WHERE id = $1 AND is_deleted = FALSE
        RETURNING title, created_at, updated_at
    `, boardID).Scan(&b.Title, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE categories
        SET is_deleted = TRUE, updated_at = NOW()
        WHERE board_id = $1
    `, boardID); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE goals
        SET status = $2, updated_at = NOW()
        FROM categories c
        WHERE goals.category_id = c.id AND c.board_id = $1
    `, boardID, model.StatusArchived); err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.BoardDeletedPayload{BoardID: boardID, UserID: actorID}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "board", &boardID, contracts.RoutingBoardDeleted, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}

	metrics.IncrementCascade("board")
	r.logger.Info("Board soft-deleted",
		zap.Int64("board_id", boardID),
		zap.Int64("user_id", actorID),
	)
	return b, nil
}
