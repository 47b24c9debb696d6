package collab

import (
	"errors"

	"wayfare/models"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDayNotFound      = errors.New("day not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidProposal  = errors.New("proposal is empty or contains duplicate ids")
	ErrInvalidActivity  = errors.New("activity payload is missing required fields")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StaleSetError means a proposed order did not match the stored activity-id
// set for the day. Current carries the authoritative day so the client can
// resynchronize without a full refetch.
type StaleSetError struct {
	Current models.Day
}

func (e *StaleSetError) Error() string {
	return "proposed order does not match stored activity set"
}
