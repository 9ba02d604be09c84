// Package apperr holds sentinel errors shared across autotag packages.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrMalformed    = errors.New("malformed tag document")
	ErrInvalidTag   = errors.New("invalid tag identifier")
	ErrInvalidTitle = errors.New("invalid document title")
	ErrInvalidPath  = errors.New("path outside the root")
)
