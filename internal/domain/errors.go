package domain

import "errors"

var (
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrTiming        = errors.New("outside permitted time window")
	ErrFunds         = errors.New("funds error")
	ErrArgument      = errors.New("invalid argument")
	ErrConflict      = errors.New("conflict")
)
