package model

import (
	"errors"
	"fmt"
)

// MalformedHierarchyError reports fatal structural problems in the input
// document: missing or non-object root, non-array children, negative
// values, duplicate parentage, or cycles. Loading aborts; nothing renders.
type MalformedHierarchyError struct {
	Reason string
	Path   string // slash-joined name path to the offending node, if known
}

func (e *MalformedHierarchyError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed hierarchy at %q: %s", e.Path, e.Reason)
	}
	return "malformed hierarchy: " + e.Reason
}

// Malformed builds a MalformedHierarchyError.
func Malformed(path, format string, args ...any) error {
	return &MalformedHierarchyError{Reason: fmt.Sprintf(format, args...), Path: path}
}

// IsMalformed reports whether err is (or wraps) a MalformedHierarchyError.
func IsMalformed(err error) bool {
	var m *MalformedHierarchyError
	return errors.As(err, &m)
}

// UnknownNodeIDError reports a query or filter toggle that referenced an id
// or category name not present in the current set. Callers treat it as a
// no-op: stale references are expected after a filter rebuild and must not
// crash the session.
type UnknownNodeIDError struct {
	ID   int
	Name string // set instead of ID for category-name lookups
}

func (e *UnknownNodeIDError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown category %q", e.Name)
	}
	return fmt.Sprintf("unknown node id %d", e.ID)
}
