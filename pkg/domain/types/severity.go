package types

import "fmt"

// Severity classifies how binding a clause is
type Severity string

const (
	SeverityMust    Severity = "MUST"
	SeverityShould  Severity = "SHOULD"
	SeverityData    Severity = "DATA"
	SeverityUnknown Severity = "UNKNOWN"
)

// AllSeverities returns all valid severities
func AllSeverities() []Severity {
	return []Severity{
		SeverityMust,
		SeverityShould,
		SeverityData,
		SeverityUnknown,
	}
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMust,
		SeverityShould,
		SeverityData,
		SeverityUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}
