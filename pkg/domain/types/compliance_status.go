package types

import "fmt"

// ComplianceStatus is the outcome of comparing a customer clause against a
// regulation clause
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "COMPLIANT"
	StatusPartial      ComplianceStatus = "PARTIAL"
	StatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
	StatusUnknown      ComplianceStatus = "UNKNOWN"
)

// AllComplianceStatuses returns all valid compliance statuses
func AllComplianceStatuses() []ComplianceStatus {
	return []ComplianceStatus{
		StatusCompliant,
		StatusPartial,
		StatusNonCompliant,
		StatusUnknown,
	}
}

// IsValid checks if the compliance status is valid
func (s ComplianceStatus) IsValid() bool {
	switch s {
	case StatusCompliant,
		StatusPartial,
		StatusNonCompliant,
		StatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the compliance status
func (s ComplianceStatus) String() string {
	return string(s)
}

// ParseComplianceStatus parses a string into a ComplianceStatus
func ParseComplianceStatus(s string) (ComplianceStatus, error) {
	status := ComplianceStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid compliance status: %s", s)
	}
	return status, nil
}
