// Package voice wraps speech recognition and synthesis behind two small
// interfaces so the websocket layer and the orchestrator can be tested
// without cloud credentials.
package voice

import "context"

// Transcriber converts one buffered audio utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer renders one utterance of text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
