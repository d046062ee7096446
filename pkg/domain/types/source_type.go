package types

// SourceType labels which retrieval source produced a vector hit
type SourceType string

const (
	// SourceKB marks hits from the permanent knowledge base namespace
	SourceKB SourceType = "KB"
	// SourceDoc marks hits from a session upload namespace
	SourceDoc SourceType = "DOC"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceKB, SourceDoc:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source type
func (s SourceType) String() string {
	return string(s)
}
