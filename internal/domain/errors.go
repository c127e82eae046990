package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrStorage and ErrDelivery classify OTP issuance failures. Handlers must
	// not reveal which of the two happened; both surface to the client as a
	// generic "failed to send verification code".
	ErrStorage  = errors.New("storage failure")
	ErrDelivery = errors.New("delivery failure")
)
