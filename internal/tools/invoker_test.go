package tools_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

func TestInvoker_UnknownToolNeverRaises(t *testing.T) {
	t.Parallel()

	inv := tools.NewInvoker(tools.NewRegistry())

	res := inv.Invoke(context.Background(), tools.Call{Name: "unknown_tool", Args: map[string]any{}})

	require.False(t, res.OK())
	assert.Equal(t, tools.KindUnknownTool, res.Err.Kind)
	assert.Contains(t, res.Payload()["error"], "unknown tool")
}

func TestInvoker_InvalidArguments(t *testing.T) {
	t.Parallel()

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(balanceDescriptor(), echoHandler))
	inv := tools.NewInvoker(reg)

	res := inv.Invoke(context.Background(), tools.Call{Name: "get_account_balance", Args: map[string]any{}})

	require.False(t, res.OK())
	assert.Equal(t, tools.KindInvalidArguments, res.Err.Kind)
}

func TestInvoker_HandlerErrorSanitized(t *testing.T) {
	t.Parallel()

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(tools.Descriptor{Name: "predict_cashflow"},
		func(context.Context, map[string]any) (map[string]any, error) {
			return nil, errors.New("pq: connection to host=10.0.0.5 password=hunter2 failed")
		}))
	inv := tools.NewInvoker(reg)

	res := inv.Invoke(context.Background(), tools.Call{Name: "predict_cashflow"})

	require.False(t, res.OK())
	assert.Equal(t, tools.KindExecutionError, res.Err.Kind)
	// Raw collaborator detail must not leak into the payload.
	assert.NotContains(t, res.Err.Message, "hunter2")
	assert.NotContains(t, res.Err.Message, "10.0.0.5")
}

func TestInvoker_DenylistOnAdministrativeTools(t *testing.T) {
	t.Parallel()

	called := false
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(tools.Descriptor{
		Name:           "execute_sql_query",
		Administrative: true,
		Params: map[string]tools.Param{
			"query": {Type: tools.TypeString, Required: true},
		},
	}, func(_ context.Context, args map[string]any) (map[string]any, error) {
		called = true
		return map[string]any{"rows": []any{}, "count": 0}, nil
	}))
	inv := tools.NewInvoker(reg)

	tests := []struct {
		name    string
		query   string
		blocked bool
	}{
		{"drop table", "DROP TABLE users", true},
		{"lowercase delete", "delete from transactions", true},
		{"alter schema", "ALTER TABLE offers ADD COLUMN x int", true},
		{"update rows", "update users set balance = 0", true},
		{"plain select", "SELECT merchant, SUM(amount) FROM transactions GROUP BY merchant", false},
		{"keyword inside identifier allowed", "SELECT * FROM updates_feed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false

			res := inv.Invoke(context.Background(), tools.Call{
				Name: "execute_sql_query",
				Args: map[string]any{"query": tt.query},
			})

			if tt.blocked {
				require.False(t, res.OK())
				assert.Equal(t, tools.KindInvalidArguments, res.Err.Kind)
				assert.False(t, called, "handler must not run for blocked query")
			} else {
				require.True(t, res.OK(), "query should pass: %s", tt.query)
				assert.True(t, called)
			}
		})
	}
}

func TestInvoker_DenylistSkipsNonAdministrativeTools(t *testing.T) {
	t.Parallel()

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(tools.Descriptor{
		Name: "search_merchants",
		Params: map[string]tools.Param{
			"user_id":       {Type: tools.TypeString, Required: true},
			"merchant_name": {Type: tools.TypeString},
		},
	}, echoHandler))
	inv := tools.NewInvoker(reg)

	// A merchant literally named "Update" must not trip the denylist.
	res := inv.Invoke(context.Background(), tools.Call{
		Name: "search_merchants",
		Args: map[string]any{"user_id": "demo_user", "merchant_name": "Update Fitness"},
	})

	assert.True(t, res.OK())
}

func TestResult_Payload(t *testing.T) {
	t.Parallel()

	ok := tools.Result{Data: map[string]any{"balance": 5200.50}}
	assert.Equal(t, map[string]any{"balance": 5200.50}, ok.Payload())

	failed := tools.Result{Err: &tools.Error{Kind: tools.KindExecutionError, Message: "tool x failed"}}
	payload := failed.Payload()
	assert.Equal(t, "tool x failed", payload["error"])
	assert.Equal(t, "execution_error", payload["error_kind"])
}
