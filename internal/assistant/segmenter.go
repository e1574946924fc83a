package assistant

// Segmenter incrementally splits streamed text into speakable utterances.
// A boundary is terminal punctuation followed by whitespace, or a line
// break. Terminal punctuation at the very end of the buffer is held back
// until more text or Flush arrives, so decimal numbers and mid-sentence
// abbreviations split only when the following whitespace confirms the
// boundary. One segmenter serves exactly one turn; it must be fresh or
// Reset between turns.
type Segmenter struct {
	buf string
}

// NewSegmenter returns an empty segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Feed appends a delta and returns every complete utterance now available,
// in order. Emitted utterances keep their trailing whitespace, so the
// concatenation of all emissions plus the final flush equals the
// concatenation of all fed deltas exactly.
func (s *Segmenter) Feed(delta string) []string {
	s.buf += delta

	var utterances []string
	start := 0
	for i := 0; i < len(s.buf); i++ {
		switch s.buf[i] {
		case '\n':
			end := i + 1
			for end < len(s.buf) && s.buf[end] == '\n' {
				end++
			}
			utterances = append(utterances, s.buf[start:end])
			start = end
			i = end - 1

		case '.', '!', '?':
			if i+1 >= len(s.buf) || !isSpace(s.buf[i+1]) {
				continue
			}
			end := i + 1
			for end < len(s.buf) && isSpace(s.buf[end]) {
				end++
			}
			utterances = append(utterances, s.buf[start:end])
			start = end
			i = end - 1
		}
	}

	s.buf = s.buf[start:]
	return utterances
}

// Flush returns any remaining buffer content and clears it. Called at
// normal turn completion.
func (s *Segmenter) Flush() string {
	rem := s.buf
	s.buf = ""
	return rem
}

// Reset discards the buffer without returning it. Called when an
// interruption abandons in-flight output.
func (s *Segmenter) Reset() {
	s.buf = ""
}

// Pending reports whether undelivered text remains buffered.
func (s *Segmenter) Pending() bool {
	return s.buf != ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
