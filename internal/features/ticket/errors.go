package ticket

import "errors"

var (
	ErrInvalidTicket   = errors.New("invalid ticket")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)
