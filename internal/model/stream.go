// Package model abstracts the streaming generative backend behind a small
// pull interface so the orchestrator and its tests never touch provider
// types directly.
package model

import (
	"context"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

// ToolCall is a tool directive emitted mid-stream by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Delta is one streamed increment: a text fragment, a tool directive, or
// neither (a keep-alive chunk with nothing usable). Text and Call are never
// both set in one delta.
type Delta struct {
	Text string
	Call *ToolCall
}

// Stream yields deltas for one model turn until io.EOF. Close releases the
// underlying connection and is safe to call at any point, including
// mid-stream on cancellation.
type Stream interface {
	Next() (Delta, error)
	Close()
}

// Client opens a streamed completion over the conversation history with the
// given tool capability set advertised to the model.
type Client interface {
	Stream(ctx context.Context, system string, history []domain.Turn, descs []tools.Descriptor) (Stream, error)
}
