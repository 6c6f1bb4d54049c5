package core

// Role tags a message for the generative backend.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation or backend request.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// UserMessage builds a user-role message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// AssistantMessage builds an assistant-role message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }
