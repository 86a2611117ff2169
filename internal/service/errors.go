package service

import "errors"

var (
	// ErrValidation marks user-fixable input problems that surface past request
	// binding, such as a malformed email or a blank trimmed field.
	ErrValidation = errors.New("invalid input")
	// ErrEmailExists is returned when registering with an email that is already taken.
	ErrEmailExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidAssertion indicates a federated identity credential that failed verification.
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	// ErrUserNotFound is returned when no user matches the given email or id.
	ErrUserNotFound = errors.New("user not found")
	// ErrPostNotFound is returned when no post matches the given id.
	ErrPostNotFound = errors.New("post not found")
	// ErrForbidden covers rejected refresh tokens: bad signature, expired,
	// unknown subject, or a token no longer in the active set.
	ErrForbidden = errors.New("forbidden")
	// ErrNotOwner is returned when a caller mutates a post they do not own.
	ErrNotOwner = errors.New("not the post owner")
)
