package service

import (
	"errors"

	"consignment-service/internal/commission"
)

// ErrInvalidArgument is the engine's validation error, reused for request
// validation so callers test a single sentinel.
var ErrInvalidArgument = commission.ErrInvalidArgument

var (
	ErrNotFound          = errors.New("not found")
	ErrIneligible        = errors.New("ineligible for consignment")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateRequest  = errors.New("idempotent key already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// IneligibleError carries the customer-facing explanation of a refusal.
type IneligibleError struct {
	Message string
	Reason  string
}

func (e *IneligibleError) Error() string { return e.Message }

func (e *IneligibleError) Is(target error) bool { return target == ErrIneligible }
