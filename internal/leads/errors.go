package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidStatus is returned when a status is outside the closed set
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrUnknownContact is returned when the referenced contact does not exist
	ErrUnknownContact = errors.New("lead references unknown contact")
)
