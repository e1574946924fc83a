package redis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	redisstore "github.com/akashs101199/gcp-banking-personal-assistant/internal/store/redis"
)

func TestSessionChannel(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.SessionChannel("9f2c1d34")
		assert.Equal(t, "session:9f2c1d34", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.SessionChannel("abc")
		assert.True(t, strings.HasPrefix(got, "session:"), "expected prefix 'session:', got %q", got)
	})

	t.Run("different inputs produce different outputs", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, redisstore.SessionChannel("a"), redisstore.SessionChannel("b"))
	})
}
