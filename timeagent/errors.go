package timeagent

import "errors"

// Sentinel errors for pipeline inputs and step contracts.
var (
	ErrEmptyTimezone  = errors.New("timezone is required")
	ErrInvalidInputs  = errors.New("invalid initial values")
	ErrMissingSlot    = errors.New("required state slot is absent")
	ErrMalformedReply = errors.New("malformed model reply")
)
