package types

import "fmt"

// DocType classifies an uploaded document
type DocType string

const (
	DocTypeRegulation DocType = "regulation"
	DocTypeCustomer   DocType = "customer"
	DocTypeSession    DocType = "session"
)

// AllDocTypes returns all valid document types
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeRegulation,
		DocTypeCustomer,
		DocTypeSession,
	}
}

// IsValid checks if the document type is valid
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeRegulation,
		DocTypeCustomer,
		DocTypeSession:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document type
func (t DocType) String() string {
	return string(t)
}

// ParseDocType parses a string into a DocType
func ParseDocType(s string) (DocType, error) {
	docType := DocType(s)
	if !docType.IsValid() {
		return "", fmt.Errorf("invalid document type: %s", s)
	}
	return docType, nil
}
