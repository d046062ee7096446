package types

import "fmt"

// RiskLevel grades the risk attached to an assessment result
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// AllRiskLevels returns all valid risk levels
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskHigh,
		RiskMedium,
		RiskLow,
	}
}

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskHigh,
		RiskMedium,
		RiskLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	risk := RiskLevel(s)
	if !risk.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return risk, nil
}
