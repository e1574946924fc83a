package domain

import "time"

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	RoleUser       TurnRole = "user"
	RoleAssistant  TurnRole = "model"
	RoleToolResult TurnRole = "tool"
)

// Turn is one immutable entry in a session's conversation history.
// User and assistant turns carry Text; tool-result turns carry the tool
// name and its structured payload.
type Turn struct {
	Role      TurnRole       `json:"role"`
	Text      string         `json:"text,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolData  map[string]any `json:"tool_data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewUserTurn creates a user turn stamped now.
func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

// NewAssistantTurn creates an assistant turn stamped now.
func NewAssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text, CreatedAt: time.Now()}
}

// NewToolCallTurn creates an assistant turn recording a tool directive.
func NewToolCallTurn(name string, args map[string]any) Turn {
	return Turn{Role: RoleAssistant, ToolName: name, ToolData: args, CreatedAt: time.Now()}
}

// NewToolTurn creates a tool-result turn stamped now.
func NewToolTurn(name string, data map[string]any) Turn {
	return Turn{Role: RoleToolResult, ToolName: name, ToolData: data, CreatedAt: time.Now()}
}
