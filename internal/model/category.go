package model

import "time"

// Category groups goals on a board. The board reference is immutable
// after creation.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BoardID   int64     `json:"board_id"`
	Title     string    `json:"title"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
