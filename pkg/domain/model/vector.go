package model

import (
	"github.com/google/uuid"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini gemini-embedding-001 is configured for 768 dimensions.
const EmbeddingDimension = 768

// VectorRecordID is a UUID-based identifier for a stored vector
type VectorRecordID string

// NewVectorRecordID generates a new UUID v4 VectorRecordID
func NewVectorRecordID() VectorRecordID {
	return VectorRecordID(uuid.New().String())
}

// VectorMetadata travels with every stored vector and identifies the logical
// clause it was embedded from
type VectorMetadata struct {
	ClauseLabel string
	DocID       int64
	DocName     string
	PageNumber  int
	SourceType  types.SourceType
}

// VectorRecord is one embeddable text unit plus its metadata. Embedding may
// be empty until the index router fills it in at ingest time.
type VectorRecord struct {
	ID        VectorRecordID
	Text      string
	Embedding []float64
	Metadata  VectorMetadata
}

// ScoredRecord pairs a vector record with a retrieval or fusion score
type ScoredRecord struct {
	Record *VectorRecord
	Score  float64
}

// IdentityKey is the composite semantic identity used for fusion
// de-duplication: the same logical clause retrieved from two sources must
// merge rather than appear twice.
type IdentityKey struct {
	SourceType  types.SourceType
	DocName     string
	ClauseLabel string
}

// Identity returns the record's semantic identity key
func (r *VectorRecord) Identity() IdentityKey {
	return IdentityKey{
		SourceType:  r.Metadata.SourceType,
		DocName:     r.Metadata.DocName,
		ClauseLabel: r.Metadata.ClauseLabel,
	}
}
