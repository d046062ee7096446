package model

import (
	"time"

	"github.com/skyelectric/reglens/pkg/domain/types"
)

// Assessment represents one compliance run of a customer document against a
// regulation document
type Assessment struct {
	ID              int64
	CustomerDocID   int64
	RegulationDocID int64
	CreatedAt       time.Time
}

// AssessmentResult is the persisted verdict for one customer clause. Clauses
// with no retrievable regulation match produce no result.
type AssessmentResult struct {
	ID                 int64
	AssessmentID       int64
	CustomerClauseID   int64
	RegulationClauseID int64
	Status             types.ComplianceStatus
	Risk               types.RiskLevel
	Reasoning          string
	EvidenceText       string
	Confidence         float64
}
