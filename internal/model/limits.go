package model

// Field limits carried over from the relational schema.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
	MaxCommentLen     = 1000
)
