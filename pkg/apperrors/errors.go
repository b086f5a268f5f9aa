package apperrors

import "errors"

var (
	ErrUnknownCapability = errors.New("unknown capability")
	ErrCapabilityBlocked = errors.New("capability is not active")
	ErrNoEntities        = errors.New("no entities extracted from query")
	ErrNoActivePlans     = errors.New("no active capabilities matched the query")
	ErrRegistryInvalid   = errors.New("capability registry failed validation")
)
