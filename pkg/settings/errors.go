package settings

import "errors"

// Domain errors
var (
	ErrImmutableSettings   = errors.New("settings object is immutable")
	ErrMissingKey          = errors.New("setting not found")
	ErrUnknownPriority     = errors.New("unknown settings priority")
	ErrInvalidBool         = errors.New("invalid boolean setting")
	ErrInvalidNumber       = errors.New("invalid numeric setting")
	ErrInvalidList         = errors.New("invalid list setting")
	ErrInvalidDict         = errors.New("invalid dictionary setting")
	ErrInvalidUpdateSource = errors.New("unsupported settings source")
)
