package contentitem

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrItemNotFound indicates an item id is unknown to the registry
	ErrItemNotFound = errors.New("content item not found")

	// ErrItemExists indicates an item with the same id is already registered
	ErrItemExists = errors.New("content item already exists")

	// ErrStreamNotFound indicates the content store holds no bytes for an item
	ErrStreamNotFound = errors.New("content stream not found")

	// ErrObjectNotFound indicates a blob store has no object under a key
	ErrObjectNotFound = errors.New("object not found")
)

// Kind classifies gateway failures.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindNoContent      Kind = "no_content"
	KindInvalidRequest Kind = "invalid_request"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal_error"
)

// Error is returned by Gateway and ItemService operations.
type Error struct {
	Kind    Kind
	Op      string
	ItemID  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that did not come from this package
// are internal failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func notFoundError(op, id string, err error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Op:      op,
		ItemID:  id,
		Message: fmt.Sprintf("could not find a content item with id '%s'", id),
		Err:     err,
	}
}

func missingStreamError(op, id string, err error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Op:      op,
		ItemID:  id,
		Message: fmt.Sprintf("content item with id '%s' doesn't have content associated with it", id),
		Err:     err,
	}
}

func noContentError(op, id string) *Error {
	return &Error{
		Kind:    KindNoContent,
		Op:      op,
		ItemID:  id,
		Message: fmt.Sprintf("no data available for content item %s", id),
	}
}

func invalidRequestError(op, id, msg string, err error) *Error {
	return &Error{
		Kind:    KindInvalidRequest,
		Op:      op,
		ItemID:  id,
		Message: msg,
		Err:     err,
	}
}

func internalError(op, id, msg string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Op:      op,
		ItemID:  id,
		Message: fmt.Sprintf("%s %s", msg, id),
		Err:     err,
	}
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
