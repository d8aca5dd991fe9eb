package service

import (
	"strings"
	"unicode/utf8"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("title must not be empty")
	}
	if utf8.RuneCountInString(title) > model.MaxTitleLen {
		return apperr.Validation("title exceeds %d characters", model.MaxTitleLen)
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > model.MaxDescriptionLen {
		return apperr.Validation("description exceeds %d characters", model.MaxDescriptionLen)
	}
	return nil
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation("text must not be empty")
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLen {
		return apperr.Validation("text exceeds %d characters", model.MaxCommentLen)
	}
	return nil
}
