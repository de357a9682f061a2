package utils

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoBillingCustomer  = errors.New("no billing customer on file")
	ErrValidation         = errors.New("validation error")
	ErrUpstreamLookup     = errors.New("billing customer lookup failed")
	ErrCheckoutCreation   = errors.New("failed to create session")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrHandlerFailure     = errors.New("webhook handler failed")
	ErrDatabaseError      = errors.New("database error")
)
