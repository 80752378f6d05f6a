package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrNotAwaitingReview  = errors.New("request is not awaiting review")
	ErrInvalidPlan        = errors.New("invalid plan selected")
	ErrRateLimited        = errors.New("too many requests")
)
