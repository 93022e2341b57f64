// Package docerr holds the failure taxonomy shared by the generator stages.
package docerr

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CodeStructuralParse     = "STRUCTURAL_PARSE_ERROR"
	CodeBoundaryNotFound    = "BOUNDARY_NOT_FOUND"
	CodeLinkTargetMissing   = "LINK_TARGET_MISSING"
	CodeRenderInconsistency = "RENDER_INCONSISTENCY"
)

var (
	// ErrStructuralParse marks a malformed annotation entry. It is the only
	// condition that is recovered from locally (skip and warn).
	ErrStructuralParse = errors.New("structural parse error")
	// ErrBoundaryNotFound means a start or end marker is missing from a file.
	ErrBoundaryNotFound = errors.New("boundary not found")
	// ErrLinkTargetMissing is reported by lint for unresolved links.
	ErrLinkTargetMissing = errors.New("link target missing")
	// ErrRenderInconsistency means the model lacks a field a renderer needs.
	ErrRenderInconsistency = errors.New("render inconsistency")
)

// StructuralParse builds a per-entry parse warning for path:line.
func StructuralParse(path string, line int, format string, args ...any) error {
	msg := fmt.Sprintf("%s:%d: %s", path, line, fmt.Sprintf(format, args...))
	return goerrors.Wrap(ErrStructuralParse, goerrors.CategoryValidation, msg).
		WithTextCode(CodeStructuralParse)
}

// BoundaryNotFound reports which marker could not be located in path.
func BoundaryNotFound(path, marker, pattern string) error {
	msg := fmt.Sprintf("%s: %s marker %q not found", path, marker, pattern)
	return goerrors.Wrap(ErrBoundaryNotFound, goerrors.CategoryValidation, msg).
		WithTextCode(CodeBoundaryNotFound)
}

// LinkTargetMissing reports an unresolved link found in file.
func LinkTargetMissing(file, target, reason string) error {
	msg := fmt.Sprintf("%s: link %q: %s", file, target, reason)
	return goerrors.Wrap(ErrLinkTargetMissing, goerrors.CategoryNotFound, msg).
		WithTextCode(CodeLinkTargetMissing)
}

// RenderInconsistency reports a model entry missing a required field.
func RenderInconsistency(entity, name, field string) error {
	msg := fmt.Sprintf("%s %q: missing required field %s", entity, name, field)
	return goerrors.Wrap(ErrRenderInconsistency, goerrors.CategoryInternal, msg).
		WithTextCode(CodeRenderInconsistency)
}

// IsRecoverable reports whether err may be downgraded to a warning.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrStructuralParse)
}
