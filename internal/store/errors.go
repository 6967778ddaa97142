package store

import (
	"errors"
	"fmt"
)

// maxRemoteMessageLen bounds how much of a remote error body is kept for
// display.
const maxRemoteMessageLen = 200

// NotFoundError reports that the target filename is absent from the store.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: %s not found", e.Path)
}

// RevisionConflictError reports a write rejected because the supplied
// revision identifier was stale or missing. Callers may retry after
// re-fetching the current revision.
type RevisionConflictError struct {
	Path    string
	Message string
}

func (e *RevisionConflictError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store: revision conflict writing %s", e.Path)
	}
	return fmt.Sprintf("store: revision conflict writing %s: %s", e.Path, e.Message)
}

// TransportError wraps a network or API failure with the backend status and
// a bounded slice of its response text.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store: backend error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsRevisionConflict reports whether err is a RevisionConflictError.
func IsRevisionConflict(err error) bool {
	var target *RevisionConflictError
	return errors.As(err, &target)
}

func truncateMessage(message string) string {
	if len(message) <= maxRemoteMessageLen {
		return message
	}
	return message[:maxRemoteMessageLen]
}
