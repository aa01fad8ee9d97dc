package models

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of a transcript replayed to the generation endpoint.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid reports whether the role is one the generation endpoint accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
