package model

import (
	"time"

	"github.com/skyelectric/reglens/pkg/domain/types"
)

// ReportRow is one line of the assessment report table
type ReportRow struct {
	ClauseLabel string
	Status      types.ComplianceStatus
	Risk        types.RiskLevel
	Reasoning   string
	Evidence    string
	Confidence  float64
}

// Report is the assembled tabular view of one assessment, handed to an
// external renderer for presentation
type Report struct {
	AssessmentID  int64
	CustomerDoc   string
	RegulationDoc string
	CreatedAt     time.Time
	Rows          []ReportRow
}
