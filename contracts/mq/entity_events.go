package mq

// Routing keys for the events exchange.
const (
	RoutingBoardCreated       = "board.created"
	RoutingBoardUpdated       = "board.updated"
	RoutingBoardDeleted       = "board.deleted"
	RoutingParticipantGranted = "participant.granted"
	RoutingCategoryCreated    = "category.created"
	RoutingCategoryUpdated    = "category.updated"
	RoutingCategoryDeleted    = "category.deleted"
	RoutingGoalCreated        = "goal.created"
	RoutingGoalUpdated        = "goal.updated"
	RoutingGoalArchived       = "goal.archived"
	RoutingCommentCreated     = "comment.created"
	RoutingCommentUpdated     = "comment.updated"
	RoutingCommentDeleted     = "comment.deleted"
)

type BoardCreatedPayload struct {
	BoardID int64  `json:"board_id"`
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
}

type BoardUpdatedPayload struct {
	BoardID int64  `json:"board_id"`
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
}

// BoardDeletedPayload describes a board soft-delete cascade: the board is
// flagged deleted, its categories are flagged deleted, and every goal under
// them is archived, all in one transaction.
type BoardDeletedPayload struct {
	BoardID int64 `json:"board_id"`
	UserID  int64 `json:"user_id"`
}

type ParticipantGrantedPayload struct {
	BoardID   int64  `json:"board_id"`
	UserID    int64  `json:"user_id"`    // granted user
	GrantedBy int64  `json:"granted_by"` // acting owner
	Role      string `json:"role"`
}

type CategoryCreatedPayload struct {
	CategoryID int64  `json:"category_id"`
	BoardID    int64  `json:"board_id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
}

type CategoryUpdatedPayload struct {
	CategoryID int64  `json:"category_id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
}

type CategoryDeletedPayload struct {
	CategoryID int64 `json:"category_id"`
	BoardID    int64 `json:"board_id"`
	UserID     int64 `json:"user_id"`
}

type GoalCreatedPayload struct {
	GoalID     int64  `json:"goal_id"`
	CategoryID int64  `json:"category_id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
	Priority   string `json:"priority"`
}

type GoalUpdatedPayload struct {
	GoalID int64  `json:"goal_id"`
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

type GoalArchivedPayload struct {
	GoalID int64 `json:"goal_id"`
	UserID int64 `json:"user_id"`
}

type CommentCreatedPayload struct {
	CommentID int64 `json:"comment_id"`
	GoalID    int64 `json:"goal_id"`
	UserID    int64 `json:"user_id"`
}

type CommentUpdatedPayload struct {
	CommentID int64 `json:"comment_id"`
	UserID    int64 `json:"user_id"`
}

type CommentDeletedPayload struct {
	CommentID int64 `json:"comment_id"`
	GoalID    int64 `json:"goal_id"`
	UserID    int64 `json:"user_id"`
}
