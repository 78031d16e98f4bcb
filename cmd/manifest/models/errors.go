package models

import "errors"

// Error kinds surfaced by the manifest core. Callers classify failures
// with errors.Is; every error returned by the services wraps one of these
// (or a collaborator error) with operation context.
var (
	// ErrInvalidInput indicates malformed or missing input, including
	// identifier-generation input and rejected amendment patches
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingRequiredFields indicates the pre-reissue validation failed
	ErrMissingRequiredFields = errors.New("missing required fields")

	// ErrNotCurrentVersion indicates the operation targeted a version that
	// is not (or no longer) the current version of its lineage
	ErrNotCurrentVersion = errors.New("not the current version")

	// ErrInvalidState indicates the version status does not admit the
	// requested transition
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrTemplateNotFound indicates the document template is not registered
	ErrTemplateNotFound = errors.New("document template not found")

	// ErrRenderError indicates document rendering failed
	ErrRenderError = errors.New("document rendering failed")

	// ErrEmptyArtifact indicates rendering produced no content
	ErrEmptyArtifact = errors.New("rendered artifact is empty")

	// ErrDuplicateSequence indicates the internal sequence invariant was
	// violated. Fatal, never retried.
	ErrDuplicateSequence = errors.New("duplicate internal sequence")

	// ErrProtectedRecord indicates an attempt to delete the origin snapshot
	ErrProtectedRecord = errors.New("protected record")

	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")
)
