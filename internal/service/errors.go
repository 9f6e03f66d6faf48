package service

import "errors"

var (
	ErrSubmitInProgress = errors.New("a prediction is already being submitted")
	ErrInvalidDraft     = errors.New("invalid prediction input")
	ErrUnknownField     = errors.New("unknown field")
	ErrFieldDisabled    = errors.New("field is disabled")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrViewClosed       = errors.New("view is closed")
	ErrViewNotFound     = errors.New("view not found")
)
