package openai

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// sseDataPrefix marks payload lines in a server-sent event stream.
const sseDataPrefix = "data: "

// sseDoneSentinel is the payload that terminates the stream.
const sseDoneSentinel = "[DONE]"

// maxLineSize bounds a single SSE line.
const maxLineSize = 1024 * 1024

// sseChunk is one streamed chat completion chunk.
type sseChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// tokenStream reads content deltas from a server-sent event stream.
type tokenStream struct {
	body      io.ReadCloser
	scanner   *bufio.Scanner
	log       *logger.Logger
	done      bool
	closeOnce sync.Once
	closeErr  error
}

func newTokenStream(body io.ReadCloser, log *logger.Logger) *tokenStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &tokenStream{
		body:    body,
		scanner: scanner,
		log:     log,
	}
}

// Recv returns the next content token. It returns io.EOF when the stream
// ends, either via the [DONE] sentinel or exhaustion of the response body.
// Lines without the data prefix and malformed payloads are skipped.
func (t *tokenStream) Recv() (string, error) {
	if t.done {
		return "", io.EOF
	}

	for t.scanner.Scan() {
		line := strings.TrimSpace(t.scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}

		payload := strings.TrimPrefix(line, sseDataPrefix)
		if payload == sseDoneSentinel {
			t.done = true
			return "", io.EOF
		}

		var chunk sseChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			t.log.Debug("skipping malformed stream payload: %v", err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}

	t.done = true
	if err := t.scanner.Err(); err != nil {
		// Transport errors end the stream without surfacing; tokens
		// already delivered remain valid.
		t.log.Warn("stream interrupted: %v", err)
	}
	return "", io.EOF
}

// Close releases the underlying response body. Safe to call more than once.
func (t *tokenStream) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.body.Close()
	})
	return t.closeErr
}
