package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: archive may be corrupted")
	ErrOffsetOverlap      = errors.New("tensor offsets overlap")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrNegativeOffset     = errors.New("negative offset or size")
	ErrTooManyTensors     = errors.New("too many tensors in archive")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrTagMismatch        = errors.New("archive holds a different result type")
	ErrInvalidEntry       = errors.New("invalid tensor entry")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Err     error  // One of the sentinel errors above
	Entry   string // Primary entry involved
	Entry2  string // Secondary entry (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Entry2 != "" {
		return fmt.Sprintf("%v: entries %s and %s: %s", e.Err, e.Entry, e.Entry2, e.Details)
	}
	if e.Entry != "" {
		return fmt.Sprintf("%v: entry %s: %s", e.Err, e.Entry, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Details)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
