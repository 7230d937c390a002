package domain

import "errors"

var (
	ErrNoActiveRoster   = errors.New("no active class call")
	ErrRosterLocked     = errors.New("class call locked")
	ErrInvalidSlot      = errors.New("invalid slot")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidImport    = errors.New("invalid class call import")
	ErrInvalidLockTimer = errors.New("invalid lock timer")
	ErrInvalidClaim     = errors.New("invalid claim")
)
