package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyDocument    = errors.New("document contains no extractable text")

	// Upload errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// RetrievalError wraps an embedding-gateway or fragment-store failure that
// occurred while collecting context for a question. The core never retries
// it; retry policy lives inside the gateways.
type RetrievalError struct {
	DocumentID string
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for document %s: %v", e.DocumentID, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Synthesis stages reported by SynthesisError.
const (
	StageSingle         = "single"
	StageDraftPrimary   = "draft-primary"
	StageDraftSecondary = "draft-secondary"
	StageFusion         = "fusion"
)

// SynthesisError wraps a completion-gateway failure and names the stage and
// model that produced it, so the caller can tell a failed draft from a
// failed fusion.
type SynthesisError struct {
	Stage string
	Model string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed at stage %s (model %s): %v", e.Stage, e.Model, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
