package errors

import stderrors "errors"

// ========== Response codes ==========

// CodeSuccess success code
const (
	CodeSuccess = 200
)

// HTTP layer codes (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== Sentinel errors ==========

var (
	// ErrInvalidCredentials login failed; never says which field was wrong
	ErrInvalidCredentials = stderrors.New("invalid email or password")
	// ErrUnauthenticated no valid session claims were presented
	ErrUnauthenticated = stderrors.New("authentication required")
	// ErrForbidden valid claims without the required role or permission
	ErrForbidden = stderrors.New("access denied")
	// ErrClaimsResolution permissions could not be re-derived from the store
	ErrClaimsResolution = stderrors.New("claims resolution failure")

	ErrNotFound   = stderrors.New("record not found")
	ErrConflict   = stderrors.New("record already exists")
	ErrValidation = stderrors.New("validation failed")
)
