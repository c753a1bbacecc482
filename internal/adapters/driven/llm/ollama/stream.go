package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure tokenStream implements the interface.
var _ driven.TokenStream = (*tokenStream)(nil)

// maxLineSize bounds a single response line. Ollama chunks are tiny, but
// the final object carries timing stats and the full context array.
const maxLineSize = 1024 * 1024

// streamChunk is one line of the /api/chat streaming response.
type streamChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// tokenStream parses newline-delimited JSON into text tokens.
// It is forward-only and single-pass: once done (by the done flag, stream
// exhaustion or a transport error) it keeps returning io.EOF.
type tokenStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	log     *logger.Logger
	done    bool

	closeOnce sync.Once
	closeErr  error
}

func newTokenStream(body io.ReadCloser, log *logger.Logger) *tokenStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &tokenStream{
		body:    body,
		scanner: scanner,
		log:     log,
	}
}

// Recv returns the next token, or io.EOF when the stream is finished.
// Malformed lines are skipped, never fatal; a transport error ends the
// stream after logging, leaving already-yielded tokens with the caller.
func (t *tokenStream) Recv() (string, error) {
	if t.done {
		return "", io.EOF
	}

	for t.scanner.Scan() {
		line := bytes.TrimSpace(t.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			t.log.Debug("ollama: skipping malformed stream line: %v", err)
			continue
		}

		if chunk.Done {
			t.done = true
		}
		if chunk.Message.Content != "" {
			return chunk.Message.Content, nil
		}
		if t.done {
			return "", io.EOF
		}
	}

	t.done = true
	if err := t.scanner.Err(); err != nil {
		t.log.Warn("ollama: stream aborted: %v", err)
	}
	return "", io.EOF
}

// Close releases the underlying transport. Safe to call more than once.
func (t *tokenStream) Close() error {
	t.closeOnce.Do(func() {
		t.done = true
		t.closeErr = t.body.Close()
	})
	return t.closeErr
}
