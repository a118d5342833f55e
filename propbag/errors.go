package propbag

import (
	"errors"
	"fmt"
)

// Capability errors: the operation violates a property's flags or the
// requested protocol version.
var (
	ErrCapability = errors.New("propbag: operation not permitted")
	// ErrVersion is returned for properties newer than the requested version.
	ErrVersion = fmt.Errorf("%w: property not supported by the requested version", ErrCapability)
	// ErrReadOnly is returned when a new entity assigns a property without CanSet.
	ErrReadOnly = fmt.Errorf("%w: property is read-only", ErrCapability)
	// ErrNotDeletable is returned when nil is assigned to a property without CanDelete.
	ErrNotDeletable = fmt.Errorf("%w: property cannot be deleted", ErrCapability)
	// ErrNotUpdatable is returned when an existing entity assigns a property without CanUpdate.
	ErrNotUpdatable = fmt.Errorf("%w: property cannot be updated", ErrCapability)
	// ErrAttachmentReadOnly is returned for any assignment on an attachment-owned entity.
	ErrAttachmentReadOnly = fmt.Errorf("%w: attachment entities are read-only", ErrCapability)
)

// State errors: the property has no value to read.
var (
	ErrState = errors.New("propbag: property value unavailable")
	// ErrNotLoaded is returned when the property was neither loaded nor requested.
	// It must be loaded or assigned before it can be read.
	ErrNotLoaded = fmt.Errorf("%w: property must be loaded or assigned before reading", ErrState)
	// ErrNotReturned is returned when the property was requested but the server
	// did not return it.
	ErrNotReturned = fmt.Errorf("%w: property was requested but not returned by the server", ErrState)
	// ErrNotAssigned is returned when the property was not requested and has no value.
	ErrNotAssigned = fmt.Errorf("%w: property must be assigned before reading", ErrState)
)

// PropertyError records a failed operation on one property.
type PropertyError struct {
	Op       string // "get", "set", "load" or "write"
	Property string
	Err      error
}

func (e *PropertyError) Error() string {
	return e.Op + " " + e.Property + ": " + e.Err.Error()
}

func (e *PropertyError) Unwrap() error { return e.Err }
