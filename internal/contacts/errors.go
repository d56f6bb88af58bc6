package contacts

import "errors"

var (
	// ErrContactNotFound is returned when a contact is not found
	ErrContactNotFound = errors.New("contact not found")
)
