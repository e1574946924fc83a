package assistant_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/assistant"
)

func TestSegmenter_BoundaryAfterWhitespace(t *testing.T) {
	t.Parallel()

	seg := assistant.NewSegmenter()

	got := seg.Feed("Hello world. How are")
	require.Equal(t, []string{"Hello world. "}, got)

	got = seg.Feed(" you?")
	assert.Empty(t, got, "trailing punctuation waits for confirmation")

	assert.Equal(t, "How are you?", seg.Flush())
}

func TestSegmenter_ConcatenationInvariant(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"Hello world. How are", " you?"},
		{"One.", " Two!", " Three? Four"},
		{"Your balance is $5,200.50. ", "Anything else?"},
		{"Pi is 3.14159 and e is 2.71828. Indeed."},
		{"Line one\nLine two\n", "Line three"},
		{"", "No punctuation at all"},
		{"A. B. C. ", "D. E."},
		{"Ends mid", "word spl", "its are fine. Done. "},
	}

	for _, deltas := range cases {
		seg := assistant.NewSegmenter()

		var emitted strings.Builder
		for _, d := range deltas {
			for _, u := range seg.Feed(d) {
				emitted.WriteString(u)
			}
		}
		emitted.WriteString(seg.Flush())

		assert.Equal(t, strings.Join(deltas, ""), emitted.String(),
			"deltas %q must round-trip without loss or duplication", deltas)
	}
}

func TestSegmenter_DecimalsNotSplit(t *testing.T) {
	t.Parallel()

	seg := assistant.NewSegmenter()

	got := seg.Feed("That costs 3.14 dollars. Cheap!")
	require.Equal(t, []string{"That costs 3.14 dollars. "}, got)
	assert.Equal(t, "Cheap!", seg.Flush())
}

func TestSegmenter_NewlineIsBoundary(t *testing.T) {
	t.Parallel()

	seg := assistant.NewSegmenter()

	got := seg.Feed("First line\nSecond line")
	require.Equal(t, []string{"First line\n"}, got)
	assert.Equal(t, "Second line", seg.Flush())
}

func TestSegmenter_MultipleBoundariesInOneDelta(t *testing.T) {
	t.Parallel()

	seg := assistant.NewSegmenter()

	got := seg.Feed("One. Two! Three? Four")
	assert.Equal(t, []string{"One. ", "Two! ", "Three? "}, got)
	assert.Equal(t, "Four", seg.Flush())
}

func TestSegmenter_Reset(t *testing.T) {
	t.Parallel()

	seg := assistant.NewSegmenter()
	seg.Feed("Interrupted mid sen")

	require.True(t, seg.Pending())
	seg.Reset()

	assert.False(t, seg.Pending())
	assert.Empty(t, seg.Flush())

	// Reusable after reset with no carry-over.
	got := seg.Feed("Fresh start. ")
	assert.Equal(t, []string{"Fresh start. "}, got)
}

func TestSegmenter_FlushEmptyBuffer(t *testing.T) {
	t.Parallel()

	seg := assistant.NewSegmenter()
	assert.Empty(t, seg.Flush())
}
