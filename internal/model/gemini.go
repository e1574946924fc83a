package model

import (
	"context"
	"fmt"
	"io"
	"iter"
	"sort"

	"google.golang.org/genai"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/config"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

// Gemini is the production Client backed by the Gemini API, directly or via
// Vertex AI depending on configuration.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini connects a Gemini client.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{}
	if cfg.UseVertex {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("model.NewGemini: %w", err)
	}

	return &Gemini{client: client, model: cfg.Model}, nil
}

// Stream opens one streamed completion over the history with the tool set
// advertised as function declarations.
func (g *Gemini) Stream(ctx context.Context, system string, history []domain.Turn, descs []tools.Descriptor) (Stream, error) {
	contents := toContents(history)

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if len(descs) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(descs)}}
	}

	seq := g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg)
	next, stop := iter.Pull2(seq)

	return &geminiStream{next: next, stop: stop}, nil
}

// geminiStream adapts the SDK's push iterator to the pull Stream interface.
type geminiStream struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	pending []Delta
	sawCall bool
}

func (s *geminiStream) Next() (Delta, error) {
	for {
		if len(s.pending) > 0 {
			d := s.pending[0]
			s.pending = s.pending[1:]
			return d, nil
		}
		// A tool directive ends the usable portion of the turn; anything the
		// model streams after it belongs to a speculative continuation and is
		// discarded.
		if s.sawCall {
			s.stop()
			return Delta{}, io.EOF
		}

		resp, err, ok := s.next()
		if !ok {
			return Delta{}, io.EOF
		}
		if err != nil {
			return Delta{}, fmt.Errorf("model.geminiStream.Next: %w", err)
		}

		s.pending = chunkDeltas(resp)
		s.sawCall = hasCall(s.pending)
	}
}

func (s *geminiStream) Close() {
	s.stop()
}

// chunkDeltas flattens one response chunk into deltas, keeping at most one
// tool directive. Text parts preceding the directive are preserved; parts
// after it are dropped.
func chunkDeltas(resp *genai.GenerateContentResponse) []Delta {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	var deltas []Delta
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			deltas = append(deltas, Delta{Call: &ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			}})
			break
		}
		if part.Text != "" {
			deltas = append(deltas, Delta{Text: part.Text})
		}
	}
	return deltas
}

func hasCall(deltas []Delta) bool {
	for _, d := range deltas {
		if d.Call != nil {
			return true
		}
	}
	return false
}

// toContents converts the session transcript into provider content. Tool
// results travel back as function responses on a user-role content, per the
// Gemini function-calling protocol.
func toContents(history []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		switch t.Role {
		case domain.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: t.Text}},
			})

		case domain.RoleAssistant:
			parts := make([]*genai.Part, 0, 2)
			if t.Text != "" {
				parts = append(parts, &genai.Part{Text: t.Text})
			}
			if t.ToolName != "" {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					Name: t.ToolName,
					Args: t.ToolData,
				}})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case domain.RoleToolResult:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					Name:     t.ToolName,
					Response: t.ToolData,
				}}},
			})
		}
	}
	return contents
}

func toDeclarations(descs []tools.Descriptor) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(descs))
	for _, d := range descs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  toSchema(d),
		})
	}
	return decls
}

func toSchema(d tools.Descriptor) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(d.Params)),
	}
	for name, p := range d.Params {
		prop := &genai.Schema{
			Description: p.Description,
			Enum:        p.Enum,
		}
		switch p.Type {
		case tools.TypeString:
			prop.Type = genai.TypeString
		case tools.TypeNumber:
			prop.Type = genai.TypeNumber
		case tools.TypeInteger:
			prop.Type = genai.TypeInteger
		case tools.TypeBoolean:
			prop.Type = genai.TypeBoolean
		case tools.TypeObject:
			prop.Type = genai.TypeObject
		}
		schema.Properties[name] = prop
		if p.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	sort.Strings(schema.Required)
	return schema
}
