package assistant

// Event types emitted toward the transport layer.
const (
	EventTranscript = "transcript"
	EventResponse   = "response"
	EventUIAction   = "ui_action"
	EventError      = "error"
	EventPong       = "pong"
)

// UI actions attached to ui_action events for tool results the client can
// render richer than speech.
const (
	ActionRenderChart  = "RENDER_CHART"
	ActionRenderCredit = "RENDER_CREDIT"
	ActionRenderOffers = "RENDER_OFFERS"
)

// Event is one ordered output unit of an orchestration run. Response events
// may carry synthesized audio alongside the text; the transport sends the
// text frame first, then the audio frame, so the client renders both in
// receipt order.
type Event struct {
	Type   string         `json:"type"`
	Text   string         `json:"text,omitempty"`
	Action string         `json:"action,omitempty"`
	Data   map[string]any `json:"data,omitempty"`

	Audio []byte `json:"-"`
}

// EmitFunc delivers one event to the transport. Called strictly in order;
// a non-nil return aborts the run.
type EmitFunc func(Event) error
