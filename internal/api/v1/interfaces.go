package v1

import (
	"context"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/assistant"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

// ToolCatalog abstracts the read side of the tool registry for handler
// testing. *tools.Registry satisfies this interface.
type ToolCatalog interface {
	Describe() []tools.Descriptor
	Lookup(name string) (tools.Descriptor, bool)
}

// ToolInvoker abstracts tool dispatch for handler testing.
// *tools.Invoker satisfies this interface.
type ToolInvoker interface {
	Invoke(ctx context.Context, call tools.Call) tools.Result
}

// SessionDirectory abstracts the live session listing for handler testing.
// *assistant.Manager satisfies this interface.
type SessionDirectory interface {
	List() []*assistant.Session
}
