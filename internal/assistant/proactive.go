package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

const greetingText = "Hi, I'm Nova. How can I help with your finances today?"

// Greet emits the session-opening response: the fixed greeting plus, when
// the warehouse flags something noteworthy, one proactive insight sentence.
// The event carries the session id so observers can attach to the feed.
func (o *Orchestrator) Greet(ctx context.Context, sess *Session, emit EmitFunc) error {
	text := greetingText
	if insight := o.openingInsight(ctx, sess.UserID); insight != "" {
		text += " " + insight
	}

	ev := Event{
		Type: EventResponse,
		Text: text,
		Data: map[string]any{"session_id": sess.ID},
	}
	if o.tts != nil {
		audio, err := o.tts.Synthesize(ctx, text)
		if err != nil {
			log.Warn().Err(err).Msg("speech synthesis failed; sending text only")
		} else {
			ev.Audio = audio
		}
	}

	if err := emit(ev); err != nil {
		return fmt.Errorf("assistant.Orchestrator.Greet: %w", err)
	}
	o.publish(ctx, sess.ID, ev)
	return nil
}

// openingInsight checks the user's warehouse for anything worth mentioning
// up front: unusual transactions first, then a risky cashflow projection.
// All failures degrade to no insight.
func (o *Orchestrator) openingInsight(ctx context.Context, userID string) string {
	args := map[string]any{"user_id": userID}

	if res := o.invoker.Invoke(ctx, tools.Call{Name: "detect_anomalies", Args: args}); res.OK() {
		if n, ok := payloadInt(res.Data, "count"); ok && n > 0 {
			noun := "transactions"
			if n == 1 {
				noun = "transaction"
			}
			return fmt.Sprintf("By the way, I spotted %d unusual %s recently. Ask me about them whenever you like.", n, noun)
		}
	}

	if res := o.invoker.Invoke(ctx, tools.Call{Name: "predict_cashflow", Args: args}); res.OK() {
		if status, ok := res.Data["status"].(string); ok && strings.EqualFold(status, "risk") {
			return "Also, a heads up: your balance is projected to run low over the next month."
		}
	}

	return ""
}
