// Package assistant holds the conversational core: per-session state, the
// sentence segmenter, and the streaming orchestrator that drives one turn
// from user input through model streaming, tool dispatch, and speech
// synthesis back to the transport.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/model"
	redisstore "github.com/akashs101199/gcp-banking-personal-assistant/internal/store/redis"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/voice"
)

const systemPrompt = `You are Nova, a friendly and professional banking assistant. You help users ` +
	`understand their finances: balances, transactions, spending patterns, credit, and transfers. ` +
	`Keep answers short and conversational, since they are spoken aloud. Use the available tools to ` +
	`fetch real account data instead of guessing. For money transfers, always restate the amount and ` +
	`ask for confirmation before executing. Never reveal internal identifiers or raw query results.`

// Publisher fans session events out to observers. Satisfied by the redis
// pubsub client; nil disables fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Orchestrator drives conversational turns. It is stateless across turns
// and safe for concurrent use by many sessions; all per-turn state lives in
// the Session and in locals of RunTurn.
type Orchestrator struct {
	model    model.Client
	registry *tools.Registry
	invoker  *tools.Invoker
	tts      voice.Synthesizer

	users domain.UserRepository
	txns  domain.TransactionRepository
	convs domain.ConversationRepository
	pub   Publisher

	maxToolCalls int
	turnTimeout  time.Duration
}

// Options carries the orchestrator's collaborators. TTS, Conversations, and
// Publisher are optional; the rest are required.
type Options struct {
	Model         model.Client
	Registry      *tools.Registry
	Invoker       *tools.Invoker
	TTS           voice.Synthesizer
	Users         domain.UserRepository
	Transactions  domain.TransactionRepository
	Conversations domain.ConversationRepository
	Publisher     Publisher
	MaxToolCalls  int
	TurnTimeout   time.Duration
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.MaxToolCalls <= 0 {
		opts.MaxToolCalls = 5
	}
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = 2 * time.Minute
	}
	return &Orchestrator{
		model:        opts.Model,
		registry:     opts.Registry,
		invoker:      opts.Invoker,
		tts:          opts.TTS,
		users:        opts.Users,
		txns:         opts.Transactions,
		convs:        opts.Conversations,
		pub:          opts.Publisher,
		maxToolCalls: opts.MaxToolCalls,
		turnTimeout:  opts.TurnTimeout,
	}
}

// RunTurn processes one user input end to end: streams the model reply,
// dispatches tool directives, segments text into utterances, synthesizes
// audio per utterance, and emits ordered events. Returns ErrTurnInFlight if
// the session already has an active run. A cancelled run returns nil after
// resetting silently; no assistant turn is recorded for it.
func (o *Orchestrator) RunTurn(ctx context.Context, sess *Session, userText string, emit EmitFunc) error {
	runCtx, cancel, err := sess.begin(ctx)
	if err != nil {
		return err
	}
	defer sess.end()
	defer cancel()

	runCtx, cancelTimeout := context.WithTimeout(runCtx, o.turnTimeout)
	defer cancelTimeout()

	sess.Append(domain.NewUserTurn(userText))
	transcript := Event{Type: EventTranscript, Text: userText}
	if err := emit(transcript); err != nil {
		return fmt.Errorf("assistant.Orchestrator.RunTurn: emit transcript: %w", err)
	}
	o.publish(runCtx, sess.ID, transcript)

	seg := NewSegmenter()
	var reply strings.Builder
	anomalyCount := 0

	toolCalls := 0
	for {
		stream, err := o.model.Stream(runCtx, systemPrompt, sess.History(), o.registry.Describe())
		if err != nil {
			if runCtx.Err() != nil {
				seg.Reset()
				return nil
			}
			log.Error().Err(err).Str("session", sess.ID).Msg("model stream open failed")
			return o.finishWithFallback(ctx, sess, userText, emit)
		}

		call, streamErr := o.drain(runCtx, sess, stream, seg, &reply, emit)
		stream.Close()

		if runCtx.Err() != nil {
			// Interrupted or timed out mid-stream: discard everything
			// buffered, record nothing.
			seg.Reset()
			return nil
		}
		if streamErr != nil {
			var emitErr *emitFailure
			if errors.As(streamErr, &emitErr) {
				return fmt.Errorf("assistant.Orchestrator.RunTurn: %w", emitErr.err)
			}
			log.Error().Err(streamErr).Str("session", sess.ID).Msg("model stream failed mid-turn")
			seg.Reset()
			return o.finishWithFallback(ctx, sess, userText, emit)
		}
		if call == nil {
			break
		}

		toolCalls++
		if toolCalls > o.maxToolCalls {
			log.Warn().Str("session", sess.ID).Int("calls", toolCalls).Msg("tool call budget exhausted")
			apology := "I couldn't finish that request. Could you try a simpler question?"
			if err := o.speak(runCtx, sess, emit, apology); err != nil {
				return fmt.Errorf("assistant.Orchestrator.RunTurn: %w", err)
			}
			if reply.Len() > 0 {
				reply.WriteString(" ")
			}
			reply.WriteString(apology)
			break
		}

		result := o.invokeTool(runCtx, sess, call)
		if runCtx.Err() != nil {
			seg.Reset()
			return nil
		}

		if ev, ok := uiActionFor(call.Name, result); ok {
			if err := emit(ev); err != nil {
				return fmt.Errorf("assistant.Orchestrator.RunTurn: emit ui_action: %w", err)
			}
			o.publish(runCtx, sess.ID, ev)
		}
		if n, ok := anomaliesIn(call.Name, result); ok {
			anomalyCount = n
		}
	}

	if rem := seg.Flush(); rem != "" {
		if err := o.speak(runCtx, sess, emit, rem); err != nil {
			return fmt.Errorf("assistant.Orchestrator.RunTurn: %w", err)
		}
	}

	if anomalyCount > 0 {
		nudge := fmt.Sprintf("By the way, I noticed %d unusual transactions recently. Want me to walk you through them?", anomalyCount)
		if err := o.speak(runCtx, sess, emit, nudge); err != nil {
			return fmt.Errorf("assistant.Orchestrator.RunTurn: %w", err)
		}
		if reply.Len() > 0 {
			reply.WriteString(" ")
		}
		reply.WriteString(nudge)
	}

	if reply.Len() > 0 {
		sess.Append(domain.NewAssistantTurn(reply.String()))
	}

	o.logConversation(sess, userText, reply.String())
	return nil
}

// emitFailure distinguishes transport write errors from model stream errors
// inside drain, since only the latter take the fallback path.
type emitFailure struct {
	err error
}

func (e *emitFailure) Error() string { return e.err.Error() }

// drain consumes one model stream, feeding text through the segmenter and
// returning the first tool directive encountered, if any.
func (o *Orchestrator) drain(ctx context.Context, sess *Session, stream model.Stream, seg *Segmenter, reply *strings.Builder, emit EmitFunc) (*model.ToolCall, error) {
	for {
		delta, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if delta.Call != nil {
			return delta.Call, nil
		}
		if delta.Text == "" {
			continue
		}

		reply.WriteString(delta.Text)
		for _, utt := range seg.Feed(delta.Text) {
			if err := o.speak(ctx, sess, emit, utt); err != nil {
				return nil, &emitFailure{err: err}
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}
}

// invokeTool runs one directive and appends both the directive and its
// result to the history, so the next model call sees them in order.
func (o *Orchestrator) invokeTool(ctx context.Context, sess *Session, call *model.ToolCall) tools.Result {
	args := make(map[string]any, len(call.Args)+1)
	for k, v := range call.Args {
		args[k] = v
	}
	// The model never learns real account identifiers; the session's user is
	// injected wherever the tool schema declares one.
	if desc, ok := o.registry.Lookup(call.Name); ok {
		if _, declared := desc.Params["user_id"]; declared {
			args["user_id"] = sess.UserID
		}
	}

	log.Debug().Str("session", sess.ID).Str("tool", call.Name).Msg("dispatching tool call")
	result := o.invoker.Invoke(ctx, tools.Call{Name: call.Name, Args: args})

	if ctx.Err() != nil {
		// Cancelled while the tool ran; the result is discarded and no
		// turns are recorded.
		return result
	}

	sess.Append(domain.NewToolCallTurn(call.Name, call.Args))
	sess.Append(domain.NewToolTurn(call.Name, result.Payload()))
	return result
}

// speak emits one utterance, synthesizing audio inline so utterance N's
// audio precedes utterance N+1's text.
func (o *Orchestrator) speak(ctx context.Context, sess *Session, emit EmitFunc, utterance string) error {
	ev := Event{Type: EventResponse, Text: utterance}

	if o.tts != nil && strings.TrimSpace(utterance) != "" {
		audio, err := o.tts.Synthesize(ctx, utterance)
		if err != nil {
			log.Warn().Err(err).Msg("speech synthesis failed; sending text only")
		} else {
			ev.Audio = audio
		}
	}

	if err := emit(ev); err != nil {
		return err
	}
	o.publish(ctx, sess.ID, ev)
	return nil
}

// finishWithFallback emits a locally-assembled reply after a model failure.
// The session stays usable; the fallback reply is recorded as the assistant
// turn. Uses the parent context since the run context may already be dead.
func (o *Orchestrator) finishWithFallback(ctx context.Context, sess *Session, userText string, emit EmitFunc) error {
	text := o.fallback(ctx, sess.UserID, userText)

	if err := o.speak(ctx, sess, emit, text); err != nil {
		return fmt.Errorf("assistant.Orchestrator.finishWithFallback: %w", err)
	}

	sess.Append(domain.NewAssistantTurn(text))
	o.logConversation(sess, userText, text)
	return nil
}

// publish forwards emitted events to session observers, best-effort.
func (o *Orchestrator) publish(ctx context.Context, sessionID string, ev Event) {
	if o.pub == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := o.pub.Publish(ctx, redisstore.SessionChannel(sessionID), payload); err != nil {
		log.Debug().Err(err).Msg("session event publish failed")
	}
}

func (o *Orchestrator) logConversation(sess *Session, userText, replyText string) {
	if o.convs == nil || replyText == "" {
		return
	}

	// Best-effort, off the turn's critical path.
	entry := &domain.ConversationEntry{
		ID:        sess.ID + "-" + fmt.Sprint(sess.Len()),
		UserID:    sess.UserID,
		UserText:  userText,
		ReplyText: replyText,
		CreatedAt: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.convs.Append(ctx, entry); err != nil {
			log.Warn().Err(err).Str("conversation", entry.ID).Msg("conversation log append failed")
		}
	}()
}

// uiActionFor maps successful tool results to client render directives.
func uiActionFor(toolName string, result tools.Result) (Event, bool) {
	if !result.OK() {
		return Event{}, false
	}

	switch toolName {
	case "aggregate_spending", "generate_report":
		return Event{Type: EventUIAction, Action: ActionRenderChart, Data: result.Data}, true
	case "get_credit_insights":
		return Event{Type: EventUIAction, Action: ActionRenderCredit, Data: result.Data}, true
	case "get_personalized_offers":
		return Event{Type: EventUIAction, Action: ActionRenderOffers, Data: result.Data}, true
	}
	return Event{}, false
}

func anomaliesIn(toolName string, result tools.Result) (int, bool) {
	if toolName != "detect_anomalies" || !result.OK() {
		return 0, false
	}
	return payloadInt(result.Data, "count")
}

// payloadInt reads an integer from a tool payload. Payloads that round-trip
// through JSON deliver numbers as float64, so both forms are accepted.
func payloadInt(data map[string]any, key string) (int, bool) {
	switch n := data[key].(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
