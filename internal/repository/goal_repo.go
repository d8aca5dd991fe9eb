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

var goalOrderings = map[Ordering]string{
	OrderDefault:    "g.priority ASC",
	OrderByPriority: "g.priority ASC",
	OrderByDueDate:  "g.due_date ASC NULLS LAST",
}

const goalColumns = "g.id, g.user_id, g.category_id, g.title, g.description, g.status, g.priority, g.due_date, g.created_at, g.updated_at"

// goalVisibility is the scoping condition shared by every goal read:
// membership on the owning board, a live chain, and a non-archived status.
const goalVisibility = `
        JOIN categories c ON c.id = g.category_id
        JOIN boards b ON b.id = c.board_id
        JOIN board_participants p ON p.board_id = c.board_id
        WHERE p.user_id = $1
          AND c.is_deleted = FALSE
          AND b.is_deleted = FALSE
          AND g.status < $2
`

type GoalRepository struct {
	db     *pgxpool.Pool
	ob     *outbox.Repository
	logger *zap.Logger
}

func NewGoalRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *GoalRepository {
	return &GoalRepository{db: db, ob: ob, logger: logger}
}

func scanGoal(row interface{ Scan(...any) error }, g *model.Goal) error {
	return row.Scan(
		&g.ID,
		&g.UserID,
		&g.CategoryID,
		&g.Title,
		&g.Description,
		&g.Status,
		&g.Priority,
		&g.DueDate,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
}

func (r *GoalRepository) Insert(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	defer observe(time.Now(), "insert", "goals")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        INSERT INTO goals (user_id, category_id, title, description, status, priority, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `, g.UserID, g.CategoryID, g.Title, g.Description, g.Status, g.Priority, g.DueDate).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.GoalCreatedPayload{
		GoalID:     g.ID,
		CategoryID: g.CategoryID,
		UserID:     g.UserID,
		Title:      g.Title,
		Priority:   g.Priority.String(),
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "goal", &g.ID, contracts.RoutingGoalCreated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}

	r.logger.Info("Goal created",
		zap.Int64("goal_id", g.ID),
		zap.Int64("category_id", g.CategoryID),
		zap.Int64("user_id", g.UserID),
	)
	return g, nil
}

// ListForUser returns visible goals matching the filter and search terms.
// Archived goals never appear, whatever the caller's role.
func (r *GoalRepository) ListForUser(ctx context.Context, userID int64, filter GoalsFilter, search string, ordering Ordering) ([]model.Goal, error) {
	defer observe(time.Now(), "select", "goals")

	orderBy, ok := goalOrderings[ordering]
	if !ok {
		orderBy = goalOrderings[OrderDefault]
	}

	query := "SELECT " + goalColumns + " FROM goals g" + goalVisibility
	args := []any{userID, model.StatusArchived}

	if filter.BoardID != nil {
		args = append(args, *filter.BoardID)
		query += fmt.Sprintf(" AND c.board_id = $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND g.category_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND g.status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND g.priority = $%d", len(args))
	}
	if filter.DueAfter != nil {
		args = append(args, *filter.DueAfter)
		query += fmt.Sprintf(" AND g.due_date >= $%d", len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		query += fmt.Sprintf(" AND g.due_date <= $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (g.title ILIKE $%d OR g.description ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY " + orderBy

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		var g model.Goal
		if err := scanGoal(rows, &g); err != nil {
			return nil, apperr.FromStorage(err)
		}
		goals = append(goals, g)
	}
	return goals, apperr.FromStorage(rows.Err())
}

func (r *GoalRepository) GetForUser(ctx context.Context, userID, goalID int64) (*model.Goal, error) {
	defer observe(time.Now(), "select", "goals")

	query := "SELECT " + goalColumns + " FROM goals g" + goalVisibility + " AND g.id = $3"
	var g model.Goal
	if err := scanGoal(r.db.QueryRow(ctx, query, userID, model.StatusArchived, goalID), &g); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &g, nil
}

// Update persists field changes on a non-archived goal.
func (r *GoalRepository) Update(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	defer observe(time.Now(), "update", "goals")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        UPDATE goals
        SET category_id = $2, title = $3, description = $4, status = $5, priority = $6, due_date = $7, updated_at = NOW()
        WHERE id = $1 AND status < $8
        RETURNING updated_at
    `, g.ID, g.CategoryID, g.Title, g.Description, g.Status, g.Priority, g.DueDate, model.StatusArchived).
		Scan(&g.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.GoalUpdatedPayload{GoalID: g.ID, UserID: g.UserID, Status: g.Status.String()}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "goal", &g.ID, contracts.RoutingGoalUpdated, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return g, nil
}

// Archive moves a goal to the terminal archived status. This is the only
// path into Archived and the goal row is never removed.
func (r *GoalRepository) Archive(ctx context.Context, actorID, goalID int64) (*model.Goal, error) {
	defer observe(time.Now(), "update", "goals")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer tx.Rollback(ctx)

	g := &model.Goal{ID: goalID, Status: model.StatusArchived}
	err = tx.QueryRow(ctx, `
        UPDATE goals
        SET status = $2, updated_at = NOW()
        WHERE id = $1 AND status < $2
        RETURNING user_id, category_id, title, description, priority, due_date, created_at, updated_at
    `, goalID, model.StatusArchived).
		Scan(&g.UserID, &g.CategoryID, &g.Title, &g.Description, &g.Priority, &g.DueDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	payload := contracts.GoalArchivedPayload{GoalID: goalID, UserID: actorID}
	if err := outbox.InsertEventInTx(ctx, tx, r.ob, "goal", &goalID, contracts.RoutingGoalArchived, payload); err != nil {
		return nil, apperr.FromStorage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromStorage(err)
	}

	metrics.IncrementCascade("goal")
	r.logger.Info("Goal archived",
		zap.Int64("goal_id", goalID),
		zap.Int64("user_id", actorID),
	)
	return g, nil
}
