package model

import "github.com/skyelectric/reglens/pkg/domain/types"

// Verdict is the structured judgment for one customer/regulation clause pair
type Verdict struct {
	Status       types.ComplianceStatus
	Risk         types.RiskLevel
	Reasoning    string
	EvidenceText string
	Confidence   float64
}

// DefaultVerdict is substituted when the judgment capability fails or returns
// output that cannot be parsed. The failure is flagged as high risk so it
// surfaces in review.
func DefaultVerdict(reason string) *Verdict {
	return &Verdict{
		Status:       types.StatusUnknown,
		Risk:         types.RiskHigh,
		Reasoning:    reason,
		EvidenceText: "N/A",
		Confidence:   0.0,
	}
}
