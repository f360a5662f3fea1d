package models

import "errors"

// Error constants for subscription flow operations
var (
	ErrMissingAPIKey      = errors.New("hubspot api key must be set")
	ErrSchemaMissingEmail = errors.New("property schema must include an email property")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidContactID   = errors.New("invalid contact id")
	ErrTokenInvalid       = errors.New("subscription token is not usable")
	ErrOptOutUnconfigured = errors.New("opt-out requires portal id and subscription id")
	ErrNoEncryptionKey    = errors.New("encryption key is not configured")
)
