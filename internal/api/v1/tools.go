package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/server/middleware"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

type ListToolsOutput struct {
	Body struct {
		Tools []tools.Descriptor `json:"tools"`
	}
}

type CallToolInput struct {
	Body struct {
		Name      string         `json:"name" minLength:"1" doc:"Tool name"`
		Arguments map[string]any `json:"arguments,omitempty" doc:"Tool arguments"`
	}
}

type CallToolOutput struct {
	Body struct {
		Data map[string]any `json:"data"`
	}
}

// RegisterToolRoutes exposes the tool catalog and direct tool dispatch. The
// call endpoint exists for dashboards and debugging; conversational dispatch
// goes through the model, not through here.
func RegisterToolRoutes(api huma.API, catalog ToolCatalog, invoker ToolInvoker) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tools",
		Method:      http.MethodGet,
		Path:        "/tools",
		Summary:     "List available tool descriptors",
		Tags:        []string{"Tools"},
	}, func(_ context.Context, _ *struct{}) (*ListToolsOutput, error) {
		out := &ListToolsOutput{}
		out.Body.Tools = catalog.Describe()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "call-tool",
		Method:      http.MethodPost,
		Path:        "/tools/call",
		Summary:     "Invoke a single tool directly",
		Tags:        []string{"Tools"},
	}, func(ctx context.Context, input *CallToolInput) (*CallToolOutput, error) {
		desc, known := catalog.Lookup(input.Body.Name)
		if !known {
			return nil, huma.Error404NotFound("unknown tool: " + input.Body.Name)
		}

		args := make(map[string]any, len(input.Body.Arguments)+1)
		for k, v := range input.Body.Arguments {
			args[k] = v
		}
		if _, declared := desc.Params["user_id"]; declared && args["user_id"] == nil {
			if user, ok := middleware.UserIDFromContext(ctx); ok {
				args["user_id"] = user
			}
		}

		result := invoker.Invoke(ctx, tools.Call{Name: input.Body.Name, Args: args})
		if result.Err != nil {
			switch result.Err.Kind {
			case tools.KindUnknownTool:
				return nil, huma.Error404NotFound(result.Err.Message)
			case tools.KindInvalidArguments:
				return nil, huma.Error422UnprocessableEntity(result.Err.Message)
			default:
				return nil, huma.Error500InternalServerError(result.Err.Message)
			}
		}

		out := &CallToolOutput{}
		out.Body.Data = result.Data
		return out, nil
	})
}
