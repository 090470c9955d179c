package common

import "errors"

// Sentinel errors for piactl operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Catalog errors.
	ErrCatalogUnavailable   = errors.New("server list unavailable")
	ErrNoConfiguredProfiles = errors.New("no configured PIA profiles match the region")

	// Probe errors.
	ErrProbeUnreachable  = errors.New("probe target unreachable")
	ErrNoReachableServer = errors.New("no reachable server")

	// NetworkManager errors.
	ErrNMUnavailable = errors.New("NetworkManager is not available")
	ErrNotConnected  = errors.New("no active PIA connection")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")

	// Setup errors.
	ErrRootRequired      = errors.New("root privileges required")
	ErrDistroUnsupported = errors.New("distribution not supported")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
