package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/assistant"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/server/middleware"
	redisstore "github.com/akashs101199/gcp-banking-personal-assistant/internal/store/redis"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/voice"
)

// maxAudioBuffer caps buffered speech per utterance. A client that streams
// past this without an end_of_speech marker loses the buffer.
const maxAudioBuffer = 10 << 20

// Hub owns the WebSocket endpoints: the interactive chat connection and the
// read-only session event feed backed by Redis pub/sub.
type Hub struct {
	orchestrator *assistant.Orchestrator
	sessions     *assistant.Manager
	transcriber  voice.Transcriber
	pubsub       *redisstore.PubSub

	minAudioBytes int
}

// NewHub creates a hub. The transcriber may be nil when speech input is
// disabled; text messages still work.
func NewHub(orchestrator *assistant.Orchestrator, sessions *assistant.Manager, transcriber voice.Transcriber, pubsub *redisstore.PubSub, minAudioBytes int) *Hub {
	return &Hub{
		orchestrator:  orchestrator,
		sessions:      sessions,
		transcriber:   transcriber,
		pubsub:        pubsub,
		minAudioBytes: minAudioBytes,
	}
}

// clientMessage is one inbound text frame. Binary frames carry raw audio
// and have no envelope.
type clientMessage struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// chatConn serializes outbound frames for one connection. Response events
// are written as a text frame followed, when audio is attached, by a binary
// frame, so the client receives them in utterance order.
type chatConn struct {
	ctx  context.Context
	conn *websocket.Conn

	mu sync.Mutex
}

func (c *chatConn) emit(ev assistant.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ws.chatConn.emit: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.Write(c.ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("ws.chatConn.emit: %w", err)
	}
	if len(ev.Audio) > 0 {
		if err := c.conn.Write(c.ctx, websocket.MessageBinary, ev.Audio); err != nil {
			return fmt.Errorf("ws.chatConn.emit: %w", err)
		}
	}
	return nil
}

// ServeChat handles the interactive conversation connection. Each
// connection owns exactly one session; the session is discarded when the
// connection closes.
func (h *Hub) ServeChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	ctx := r.Context()
	sess := h.sessions.Create(userID)
	defer h.sessions.Remove(sess.ID)

	c := &chatConn{ctx: ctx, conn: conn}

	if err := h.orchestrator.Greet(ctx, sess, c.emit); err != nil {
		log.Debug().Err(err).Str("session", sess.ID).Msg("greeting failed")
		return
	}

	log.Info().Str("session", sess.ID).Str("user", userID).Msg("chat connected")

	var audio []byte
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			log.Debug().Err(err).Str("session", sess.ID).Msg("chat disconnected")
			sess.Interrupt()
			return
		}

		if msgType == websocket.MessageBinary {
			if len(audio)+len(data) > maxAudioBuffer {
				audio = nil
				h.emitError(c, "audio too long, dropped")
				continue
			}
			audio = append(audio, data...)
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.emitError(c, "malformed message")
			continue
		}

		switch {
		case msg.Type == "ping":
			_ = c.emit(assistant.Event{Type: assistant.EventPong})

		case msg.Type == "interrupt":
			sess.Interrupt()

		case msg.Type == "end_of_speech":
			buf := audio
			audio = nil
			h.handleSpeech(ctx, c, sess, buf)

		case msg.Text != "":
			h.startTurn(ctx, c, sess, msg.Text)

		default:
			h.emitError(c, "unsupported message")
		}
	}
}

// handleSpeech transcribes a buffered utterance and starts a turn with the
// transcript.
func (h *Hub) handleSpeech(ctx context.Context, c *chatConn, sess *assistant.Session, audio []byte) {
	if h.transcriber == nil {
		h.emitError(c, "speech input is not enabled")
		return
	}
	if len(audio) < h.minAudioBytes {
		h.emitError(c, "I didn't catch that, could you repeat?")
		return
	}

	text, err := h.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("transcription failed")
		h.emitError(c, "I couldn't understand the audio, could you repeat?")
		return
	}
	if text == "" {
		h.emitError(c, "I didn't catch that, could you repeat?")
		return
	}

	h.startTurn(ctx, c, sess, text)
}

// startTurn runs one orchestration turn without blocking the read loop, so
// interrupts and barge-in input stay responsive. New input while a turn is
// running cancels the running turn first; cancellation unwinds
// asynchronously, so the new turn retries briefly until the session frees.
func (h *Hub) startTurn(ctx context.Context, c *chatConn, sess *assistant.Session, text string) {
	if sess.Running() {
		sess.Interrupt()
	}

	go func() {
		var err error
		for range 100 {
			err = h.orchestrator.RunTurn(ctx, sess, text, c.emit)
			if !errors.Is(err, assistant.ErrTurnInFlight) {
				break
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("turn failed")
			h.emitError(c, "something went wrong, please try again")
		}
	}()
}

func (h *Hub) emitError(c *chatConn, text string) {
	_ = c.emit(assistant.Event{Type: assistant.EventError, Text: text})
}
