package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch    = errors.New("embeddings and metadatas length mismatch")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmptyEmbedding    = errors.New("empty embedding")
	ErrInvalidTopK       = errors.New("top_k must be at least 1")
	ErrEmptyQuestion     = errors.New("question is empty")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrFileTooLarge      = errors.New("file too large")
	ErrNoText            = errors.New("no text found")
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StageEmbed    Stage = "embed"
	StageStore    Stage = "store"
	StageSearch   Stage = "search"
	StageGenerate Stage = "generate"
)

// StageError reports a collaborator failure for one unit of work:
// a file during upload, or a question during search.
type StageError struct {
	Stage  Stage
	Source string
	Err    error
}

func (e *StageError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err, or returns nil when err is nil.
func NewStageError(stage Stage, source string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Source: source, Err: err}
}

// StageOf returns the stage of the first StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
