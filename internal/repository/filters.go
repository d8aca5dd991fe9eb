package repository

import (
	"time"

	"goalboard/internal/model"
	"goalboard/pkg/metrics"
)

// Ordering selects the sort column of a listing. Each repository accepts
// only the orderings named for its entity; anything else falls back to the
// entity default. Values never reach SQL directly - they key into
// whitelisted ORDER BY fragments.
type Ordering string

const (
	OrderDefault    Ordering = ""
	OrderByTitle    Ordering = "title"
	OrderByCreated  Ordering = "created"
	OrderByPriority Ordering = "priority"
	OrderByDueDate  Ordering = "due_date"
)

// GoalsFilter is the structured goal listing criteria.
type GoalsFilter struct {
	BoardID    *int64
	CategoryID *int64
	Status     *model.Status
	Priority   *model.Priority
	DueAfter   *time.Time
	DueBefore  *time.Time
}

func observe(start time.Time, operation, table string) {
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
}
