package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoZettels      = errors.New("no zettels found")
	ErrDuplicateTitle = errors.New("duplicate sanitized title")
)
