package usecase

import "errors"

// ErrInvalidArgument marks request errors the caller can fix.
var ErrInvalidArgument = errors.New("invalid argument")
