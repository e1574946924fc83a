package tools_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

func echoHandler(_ context.Context, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out, nil
}

func balanceDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "get_account_balance",
		Description: "Get the current account balance",
		Params: map[string]tools.Param{
			"user_id": {Type: tools.TypeString, Required: true},
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("duplicate name rejected", func(t *testing.T) {
		t.Parallel()

		reg := tools.NewRegistry()
		require.NoError(t, reg.Register(balanceDescriptor(), echoHandler))

		err := reg.Register(balanceDescriptor(), echoHandler)

		assert.ErrorIs(t, err, tools.ErrDuplicateTool)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		reg := tools.NewRegistry()

		err := reg.Register(tools.Descriptor{}, echoHandler)

		require.Error(t, err)
	})

	t.Run("sealed registry rejects registration", func(t *testing.T) {
		t.Parallel()

		reg := tools.NewRegistry()
		reg.Seal()

		err := reg.Register(balanceDescriptor(), echoHandler)

		require.Error(t, err)
	})
}

func TestRegistry_Describe_SortedByName(t *testing.T) {
	t.Parallel()

	reg := tools.NewRegistry()
	for _, name := range []string{"transfer_funds", "detect_anomalies", "pay_bill"} {
		require.NoError(t, reg.Register(tools.Descriptor{Name: name}, echoHandler))
	}

	descs := reg.Describe()

	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"detect_anomalies", "pay_bill", "transfer_funds"}, names)
}

func TestRegistry_Dispatch(t *testing.T) {
	t.Parallel()

	newReg := func(t *testing.T) *tools.Registry {
		t.Helper()
		reg := tools.NewRegistry()
		require.NoError(t, reg.Register(tools.Descriptor{
			Name: "query_transactions",
			Params: map[string]tools.Param{
				"user_id": {Type: tools.TypeString, Required: true},
				"limit":   {Type: tools.TypeInteger, Default: 100},
				"min_amount": {Type: tools.TypeNumber},
				"confirmed":  {Type: tools.TypeBoolean},
			},
		}, echoHandler))
		return reg
	}

	t.Run("unknown tool", func(t *testing.T) {
		t.Parallel()

		_, err := newReg(t).Dispatch(context.Background(), "no_such_tool", nil)

		assert.ErrorIs(t, err, tools.ErrUnknownTool)
	})

	t.Run("missing required parameter", func(t *testing.T) {
		t.Parallel()

		_, err := newReg(t).Dispatch(context.Background(), "query_transactions", map[string]any{})

		assert.ErrorIs(t, err, tools.ErrInvalidArguments)
		assert.Contains(t, err.Error(), "user_id")
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		_, err := newReg(t).Dispatch(context.Background(), "query_transactions", map[string]any{
			"user_id": "demo_user",
			"limit":   "ten",
		})

		assert.ErrorIs(t, err, tools.ErrInvalidArguments)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		t.Parallel()

		_, err := newReg(t).Dispatch(context.Background(), "query_transactions", map[string]any{
			"user_id": "demo_user",
			"bogus":   true,
		})

		assert.ErrorIs(t, err, tools.ErrInvalidArguments)
	})

	t.Run("defaults applied and floats coerced", func(t *testing.T) {
		t.Parallel()

		// Model function-call args arrive with all numbers as float64.
		out, err := newReg(t).Dispatch(context.Background(), "query_transactions", map[string]any{
			"user_id":    "demo_user",
			"min_amount": float64(12),
			"confirmed":  true,
		})

		require.NoError(t, err)
		assert.Equal(t, "demo_user", out["user_id"])
		assert.Equal(t, 100, out["limit"])
		assert.Equal(t, float64(12), out["min_amount"])
		assert.Equal(t, true, out["confirmed"])
	})

	t.Run("whole-valued float accepted as integer", func(t *testing.T) {
		t.Parallel()

		out, err := newReg(t).Dispatch(context.Background(), "query_transactions", map[string]any{
			"user_id": "demo_user",
			"limit":   float64(25),
		})

		require.NoError(t, err)
		assert.Equal(t, 25, out["limit"])
	})

	t.Run("fractional float rejected as integer", func(t *testing.T) {
		t.Parallel()

		_, err := newReg(t).Dispatch(context.Background(), "query_transactions", map[string]any{
			"user_id": "demo_user",
			"limit":   2.5,
		})

		assert.ErrorIs(t, err, tools.ErrInvalidArguments)
	})

	t.Run("enum enforced", func(t *testing.T) {
		t.Parallel()

		reg := tools.NewRegistry()
		require.NoError(t, reg.Register(tools.Descriptor{
			Name: "compare_spending",
			Params: map[string]tools.Param{
				"comparison_type": {
					Type:     tools.TypeString,
					Required: true,
					Enum:     []string{"month_over_month", "year_over_year", "vs_average"},
				},
			},
		}, echoHandler))

		_, err := reg.Dispatch(context.Background(), "compare_spending", map[string]any{
			"comparison_type": "weekly",
		})

		assert.ErrorIs(t, err, tools.ErrInvalidArguments)
	})

	t.Run("handler error propagates unwrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("warehouse timeout")
		reg := tools.NewRegistry()
		require.NoError(t, reg.Register(tools.Descriptor{Name: "broken"},
			func(context.Context, map[string]any) (map[string]any, error) {
				return nil, boom
			}))

		_, err := reg.Dispatch(context.Background(), "broken", nil)

		assert.ErrorIs(t, err, boom)
	})
}
