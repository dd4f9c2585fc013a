package service

import "errors"

// ErrInvalidArgument is matched by every caller input error.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError carries a message that is safe to show to the caller.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrInvalidArgument) true.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ErrMissingVisitorID is returned for an empty or blank visitor id.
var ErrMissingVisitorID = &InvalidArgumentError{Message: "Missing id parameter"}
