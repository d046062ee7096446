package types

// ChatRole identifies the author of a conversation message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// IsValid checks if the chat role is valid
func (r ChatRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the chat role
func (r ChatRole) String() string {
	return string(r)
}
