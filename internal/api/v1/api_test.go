package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/akashs101199/gcp-banking-personal-assistant/internal/api/v1"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/assistant"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/auth"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/server/middleware"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// newRegistry builds a sealed registry with one echo tool and one failing
// tool, enough to exercise the dispatch paths.
func newRegistry(t *testing.T) (*tools.Registry, *tools.Invoker) {
	t.Helper()

	reg := tools.NewRegistry()

	err := reg.Register(tools.Descriptor{
		Name:        "get_account_balance",
		Description: "Current balance for an account",
		Params: map[string]tools.Param{
			"user_id": {Type: tools.TypeString, Required: true},
		},
	}, func(_ context.Context, args map[string]any) (map[string]any, error) {
		return map[string]any{"user_id": args["user_id"], "balance": 5200.50}, nil
	})
	require.NoError(t, err)

	err = reg.Register(tools.Descriptor{
		Name:        "broken_tool",
		Description: "Always fails",
		Params:      map[string]tools.Param{},
	}, func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return nil, errors.New("backend unavailable")
	})
	require.NoError(t, err)

	reg.Seal()
	return reg, tools.NewInvoker(reg)
}

func TestListTools(t *testing.T) {
	t.Parallel()

	reg, invoker := newRegistry(t)
	_, api := humatest.New(t)
	v1.RegisterToolRoutes(api, reg, invoker)

	resp := api.Get("/tools")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Tools []tools.Descriptor `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.Len(t, out.Tools, 2)
	// Sorted by name.
	assert.Equal(t, "broken_tool", out.Tools[0].Name)
	assert.Equal(t, "get_account_balance", out.Tools[1].Name)
}

func TestCallTool(t *testing.T) {
	t.Parallel()

	t.Run("success_with_injected_user", func(t *testing.T) {
		t.Parallel()

		reg, invoker := newRegistry(t)
		_, api := humatest.New(t)
		v1.RegisterToolRoutes(api, reg, invoker)

		resp := api.PostCtx(userCtx("alex"), "/tools/call", map[string]any{
			"name": "get_account_balance",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var out struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
		assert.Equal(t, "alex", out.Data["user_id"])
	})

	t.Run("explicit_user_wins", func(t *testing.T) {
		t.Parallel()

		reg, invoker := newRegistry(t)
		_, api := humatest.New(t)
		v1.RegisterToolRoutes(api, reg, invoker)

		resp := api.PostCtx(userCtx("alex"), "/tools/call", map[string]any{
			"name":      "get_account_balance",
			"arguments": map[string]any{"user_id": "casey"},
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var out struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
		assert.Equal(t, "casey", out.Data["user_id"])
	})

	t.Run("unknown_tool", func(t *testing.T) {
		t.Parallel()

		reg, invoker := newRegistry(t)
		_, api := humatest.New(t)
		v1.RegisterToolRoutes(api, reg, invoker)

		resp := api.PostCtx(userCtx("alex"), "/tools/call", map[string]any{
			"name": "no_such_tool",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("invalid_arguments", func(t *testing.T) {
		t.Parallel()

		reg, invoker := newRegistry(t)
		_, api := humatest.New(t)
		v1.RegisterToolRoutes(api, reg, invoker)

		resp := api.Post("/tools/call", map[string]any{
			"name":      "get_account_balance",
			"arguments": map[string]any{"user_id": "alex", "bogus": true},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("handler_failure_sanitized", func(t *testing.T) {
		t.Parallel()

		reg, invoker := newRegistry(t)
		_, api := humatest.New(t)
		v1.RegisterToolRoutes(api, reg, invoker)

		resp := api.Post("/tools/call", map[string]any{"name": "broken_tool"})
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.NotContains(t, resp.Body.String(), "backend unavailable")
	})
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	manager := assistant.NewManager()
	first := manager.Create("alex")
	time.Sleep(time.Millisecond)
	second := manager.Create("casey")

	_, api := humatest.New(t)
	v1.RegisterSessionRoutes(api, manager)

	resp := api.Get("/sessions")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Sessions []v1.SessionSummary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.Len(t, out.Sessions, 2)
	// Ordered by creation time.
	assert.Equal(t, first.ID, out.Sessions[0].ID)
	assert.Equal(t, "alex", out.Sessions[0].UserID)
	assert.Equal(t, second.ID, out.Sessions[1].ID)
	assert.False(t, out.Sessions[0].Running)
	assert.Zero(t, out.Sessions[0].Turns)
}

func TestIssueToken(t *testing.T) {
	t.Parallel()

	const secret = "0123456789abcdef0123456789abcdef"

	t.Run("issues_for_context_user", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTokenRoutes(api, secret, time.Hour)

		resp := api.PostCtx(userCtx("alex"), "/auth/token")
		require.Equal(t, http.StatusOK, resp.Code)

		var out struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
		assert.Equal(t, int64(3600), out.ExpiresIn)

		claims, err := auth.ValidateToken(secret, out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alex", claims.UserID)
	})

	t.Run("requires_user_context", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTokenRoutes(api, secret, time.Hour)

		resp := api.Post("/auth/token")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}
