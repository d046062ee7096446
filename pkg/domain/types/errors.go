package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across layers
var (
	// ErrUnsupportedFormat is returned for uploads with an extension outside
	// the supported set
	ErrUnsupportedFormat = goerr.New("unsupported file format")

	// ErrParse means the extractor could not produce any clause. Callers
	// degrade to zero clauses instead of failing the upload.
	ErrParse = goerr.New("failed to parse document")

	// ErrNotFound is returned when a document, clause, assessment or result
	// cannot be resolved
	ErrNotFound = goerr.New("not found")

	// ErrEmptyInput is returned when an assessment is requested against a
	// document with zero clauses
	ErrEmptyInput = goerr.New("empty input")

	// ErrVectorEngine covers generic vector engine failures
	ErrVectorEngine = goerr.New("vector engine error")

	// ErrDimensionMismatch is a distinguishable vector engine failure for
	// embedding vectors of the wrong dimension
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")

	// ErrJudgmentCall means the judgment capability itself errored
	ErrJudgmentCall = goerr.New("judgment call failed")

	// ErrJudgmentParse means the judgment capability returned unparseable or
	// incomplete structured output
	ErrJudgmentParse = goerr.New("judgment output unparseable")
)

// Context keys for error values
const (
	SessionIDKey    = "session_id"
	DocumentIDKey   = "document_id"
	ClauseIDKey     = "clause_id"
	AssessmentIDKey = "assessment_id"
	NamespaceKey    = "namespace"
	FilenameKey     = "filename"
)
