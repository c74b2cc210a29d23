package types

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound         = errors.New("resource not found")
	ErrMaterialNotFound = errors.New("material not found")

	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrUsernameTaken      = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")

	// Generation Errors
	ErrInvalidInput              = errors.New("invalid input data")
	ErrGenerationPasswordInvalid = errors.New("invalid generation password, access denied")
	ErrPricingUnavailable        = errors.New("no pricing entry for the requested model")
	ErrGenerationFailed          = errors.New("material generation failed")

	// Content & Export Errors
	ErrNoGeneratedContent = errors.New("material has no generated content")
	ErrUnknownFormat      = errors.New("unknown export format")
)
