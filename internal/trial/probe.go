package trial

import (
	"errors"
	"fmt"
	"io/fs"
)

// ProbeErrorKind classifies failures while inspecting a candidate directory.
// Callers switch on the kind instead of unwrapping platform errors.
type ProbeErrorKind string

const (
	ProbeNotFound         ProbeErrorKind = "not_found"
	ProbePermissionDenied ProbeErrorKind = "permission_denied"
	ProbeNotADirectory    ProbeErrorKind = "not_a_directory"
	ProbeOther            ProbeErrorKind = "other"
)

// ProbeError reports that a candidate directory could not be inspected.
type ProbeError struct {
	Path string
	Kind ProbeErrorKind
	Err  error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("probe %s: %s", e.Path, e.Kind)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// AsProbeError returns the ProbeError inside err, or nil.
func AsProbeError(err error) *ProbeError {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// kindOf maps an os error to a probe kind.
func kindOf(err error) ProbeErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ProbeNotFound
	case errors.Is(err, fs.ErrPermission):
		return ProbePermissionDenied
	default:
		return ProbeOther
	}
}
