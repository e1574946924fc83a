package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrorKind classifies a failed tool invocation in the result payload fed
// back to the model and, sanitized, to the transport layer.
type ErrorKind string

const (
	KindUnknownTool      ErrorKind = "unknown_tool"
	KindInvalidArguments ErrorKind = "invalid_arguments"
	KindExecutionError   ErrorKind = "execution_error"
)

// Call is one transient tool invocation request.
type Call struct {
	Name string
	Args map[string]any
}

// Result is the outcome of exactly one Call: either a success payload or an
// error descriptor, never both.
type Result struct {
	Data map[string]any `json:"data,omitempty"`
	Err  *Error         `json:"error,omitempty"`
}

// Error is a sanitized tool failure: kind plus a short message. Raw handler
// errors (query text, credentials, driver detail) never cross this boundary.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Payload returns the mapping handed back to the model: the success data, or
// an error object the model can apologize about in natural language.
func (r Result) Payload() map[string]any {
	if r.Err == nil {
		return r.Data
	}
	return map[string]any{"error": r.Err.Message, "error_kind": string(r.Err.Kind)}
}

// mutatingKeywords are rejected in administrative tool arguments regardless
// of the underlying handler's own checks.
var mutatingKeywords = []string{"DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE", "UPDATE", "INSERT", "MERGE", "GRANT"}

// Invoker executes a single tool call against the registry with uniform
// failure handling: no handler error, including external collaborator
// failures, ever propagates past this boundary.
type Invoker struct {
	registry *Registry
}

// NewInvoker wraps a registry.
func NewInvoker(registry *Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Invoke dispatches one call and normalizes every failure into an error
// Result. For administrative tools the string arguments are screened for
// mutating SQL keywords before the handler runs.
func (i *Invoker) Invoke(ctx context.Context, call Call) Result {
	desc, known := i.registry.Lookup(call.Name)
	if known && desc.Administrative {
		if kw, found := findMutatingKeyword(call.Args); found {
			log.Warn().Str("tool", call.Name).Str("keyword", kw).Msg("rejected mutating administrative call")
			return Result{Err: &Error{
				Kind:    KindInvalidArguments,
				Message: "query contains forbidden operations",
			}}
		}
	}

	data, err := i.registry.Dispatch(ctx, call.Name, call.Args)
	if err != nil {
		return Result{Err: classify(call.Name, err)}
	}

	return Result{Data: data}
}

func classify(name string, err error) *Error {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return &Error{Kind: KindUnknownTool, Message: "unknown tool: " + name}
	case errors.Is(err, ErrInvalidArguments):
		// Validation messages name only parameters, never values.
		return &Error{Kind: KindInvalidArguments, Message: trimSentinel(err.Error())}
	default:
		log.Error().Err(err).Str("tool", name).Msg("tool execution failed")
		return &Error{Kind: KindExecutionError, Message: "tool " + name + " failed"}
	}
}

func trimSentinel(msg string) string {
	return strings.TrimPrefix(msg, "tools: invalid arguments: ")
}

// findMutatingKeyword scans string-typed arguments, case-insensitively, as
// whole words.
func findMutatingKeyword(args map[string]any) (string, bool) {
	for _, v := range args {
		s, ok := v.(string)
		if !ok {
			continue
		}
		upper := strings.ToUpper(s)
		for _, kw := range mutatingKeywords {
			if containsWord(upper, kw) {
				return kw, true
			}
		}
	}
	return "", false
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(s[start-1])
		afterOK := end == len(s) || !isWordByte(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
