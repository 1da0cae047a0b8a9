package models

import "time"

// Role indicates the message author type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleFunction  Role = "function"
	RoleData      Role = "data"
	RoleTool      Role = "tool"
)

// Message is one entry in a chat's durable log. The log is append-only and
// never reordered; only the terminal message may be rewritten, and only at
// finalization time.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Name identifies the tool that produced a function-role message.
	// Empty for every other role.
	Name string `json:"name,omitempty"`
}

// Chat is the durable state of one conversation: the authoritative ordered
// message log plus the metadata derived from it at persistence time.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// Clone returns a deep copy of the chat. Callers receive snapshots, never
// aliases into live state.
func (c Chat) Clone() Chat {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// User represents an authenticated user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
