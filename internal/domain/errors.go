package domain

import "errors"

// Sentinel error kinds surfaced by the core, per the error handling design.
// Callers should use errors.Is against these, since concrete errors are
// always wrapped with additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidInput marks a request missing required fields or carrying
	// a face without a usable bounding box. Recoverable at face-granularity
	// inside a batch; fatal for direct manual-op calls.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a group, face, or file lookup that yielded nothing.
	ErrNotFound = errors.New("not found")

	// ErrSourceUnreachable marks a file with no URL, a missing file doc,
	// or a failed image reachability probe.
	ErrSourceUnreachable = errors.New("source image unreachable")

	// ErrStoreError marks an underlying persistence failure. Always
	// surfaced to the caller; the core performs no partial rollback.
	ErrStoreError = errors.New("store error")

	// ErrRecognitionError marks a failed call to the external recognition
	// engine. Downgraded to an empty match set by the Match Resolver;
	// never surfaced past that layer.
	ErrRecognitionError = errors.New("recognition engine error")

	// ErrForbidden marks a destructive test-only operation invoked by a
	// non-test user.
	ErrForbidden = errors.New("forbidden")
)
