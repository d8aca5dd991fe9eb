package model

import "time"

// Comment is a leaf entity on a goal. Only its author may change or
// remove it, whatever their board role is.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	GoalID    int64     `json:"goal_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
