package types

import "strings"

// Namespace is a logical partition of the vector index. The knowledge base
// lives in the permanent namespace; each session gets its own.
type Namespace string

// NamespacePermanent holds the curated knowledge base vectors
const NamespacePermanent Namespace = "permanent"

const sessionNamespacePrefix = "session_"

// SessionNamespace returns the vector namespace owned by a session
func SessionNamespace(id SessionID) Namespace {
	return Namespace(sessionNamespacePrefix + id.Normalize().String())
}

// IsSession reports whether the namespace belongs to a session
func (n Namespace) IsSession() bool {
	return strings.HasPrefix(string(n), sessionNamespacePrefix)
}

// String returns the string representation of the namespace
func (n Namespace) String() string {
	return string(n)
}
