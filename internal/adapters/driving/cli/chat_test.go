package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// fakeStream yields a fixed token sequence.
type fakeStream struct {
	tokens []string
	pos    int
}

func (s *fakeStream) Recv() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

func (s *fakeStream) Close() error { return nil }

// fakeAssistant is a canned Assistant for session tests.
type fakeAssistant struct {
	stats     domain.IndexStats
	tokens    []string
	streamErr error
	lastQuery string
	lastHist  []domain.ChatMessage
}

func (a *fakeAssistant) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (a *fakeAssistant) RetrieveContext(context.Context, string, int) (string, error) {
	return "", nil
}

func (a *fakeAssistant) StreamAnswer(_ context.Context, query string, history []domain.ChatMessage) (driven.TokenStream, error) {
	a.lastQuery = query
	a.lastHist = history
	if a.streamErr != nil {
		return nil, a.streamErr
	}
	return &fakeStream{tokens: a.tokens}, nil
}

func (a *fakeAssistant) Stats() domain.IndexStats { return a.stats }

func newTestSession(assistant *fakeAssistant) (*chatSession, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return &chatSession{
		assistant: assistant,
		sessionID: "test-session",
		out:       buf,
		styles:    newChatStyles(false),
	}, buf
}

func TestChatSession_HandleCommand(t *testing.T) {
	t.Run("quit ends the session", func(t *testing.T) {
		s, _ := newTestSession(&fakeAssistant{})

		handled, quit := s.handleCommand("quit")

		assert.True(t, handled)
		assert.True(t, quit)
	})

	t.Run("exit ends the session", func(t *testing.T) {
		s, _ := newTestSession(&fakeAssistant{})

		handled, quit := s.handleCommand("exit")

		assert.True(t, handled)
		assert.True(t, quit)
	})

	t.Run("help lists the commands", func(t *testing.T) {
		s, buf := newTestSession(&fakeAssistant{})

		handled, quit := s.handleCommand("/help")

		assert.True(t, handled)
		assert.False(t, quit)
		assert.Contains(t, buf.String(), "/clear")
		assert.Contains(t, buf.String(), "/history")
		assert.Contains(t, buf.String(), "/stats")
	})

	t.Run("clear drops the history", func(t *testing.T) {
		s, buf := newTestSession(&fakeAssistant{})
		s.history = []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "hello"},
		}

		handled, quit := s.handleCommand("/clear")

		assert.True(t, handled)
		assert.False(t, quit)
		assert.Empty(t, s.history)
		assert.Contains(t, buf.String(), "cleared")
	})

	t.Run("history prints the conversation", func(t *testing.T) {
		s, buf := newTestSession(&fakeAssistant{})
		s.history = []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "what is alpha?"},
			{Role: domain.RoleAssistant, Content: "alpha is first"},
		}

		handled, _ := s.handleCommand("/history")

		assert.True(t, handled)
		assert.Contains(t, buf.String(), "You: what is alpha?")
		assert.Contains(t, buf.String(), "Assistant: alpha is first")
	})

	t.Run("history on empty session", func(t *testing.T) {
		s, buf := newTestSession(&fakeAssistant{})

		handled, _ := s.handleCommand("/history")

		assert.True(t, handled)
		assert.Contains(t, buf.String(), "No conversation history yet.")
	})

	t.Run("stats reports session and index state", func(t *testing.T) {
		s, buf := newTestSession(&fakeAssistant{stats: domain.IndexStats{
			TotalRecords:   12,
			TotalFiles:     3,
			EmbeddingModel: "nomic-embed-text",
			Dimensions:     768,
			IndexSize:      12,
		}})

		handled, _ := s.handleCommand("/stats")

		assert.True(t, handled)
		assert.Contains(t, buf.String(), "test-session")
		assert.Contains(t, buf.String(), "Chunks:          12")
		assert.Contains(t, buf.String(), "nomic-embed-text")
	})

	t.Run("unknown slash command is reported", func(t *testing.T) {
		s, buf := newTestSession(&fakeAssistant{})

		handled, quit := s.handleCommand("/bogus")

		assert.True(t, handled)
		assert.False(t, quit)
		assert.Contains(t, buf.String(), "Unknown command")
	})

	t.Run("plain question is not a command", func(t *testing.T) {
		s, _ := newTestSession(&fakeAssistant{})

		handled, quit := s.handleCommand("what is alpha?")

		assert.False(t, handled)
		assert.False(t, quit)
	})
}

func TestChatSession_Ask(t *testing.T) {
	t.Run("streams tokens and records the exchange", func(t *testing.T) {
		assistant := &fakeAssistant{tokens: []string{"al", "pha"}}
		s, buf := newTestSession(assistant)

		s.ask(context.Background(), "what is alpha?")

		assert.Contains(t, buf.String(), "Assistant: alpha")
		require.Len(t, s.history, 2)
		assert.Equal(t, domain.RoleUser, s.history[0].Role)
		assert.Equal(t, "what is alpha?", s.history[0].Content)
		assert.Equal(t, domain.RoleAssistant, s.history[1].Role)
		assert.Equal(t, "alpha", s.history[1].Content)
	})

	t.Run("passes prior history to the assistant", func(t *testing.T) {
		assistant := &fakeAssistant{tokens: []string{"ok"}}
		s, _ := newTestSession(assistant)
		s.history = []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "earlier"},
			{Role: domain.RoleAssistant, Content: "answer"},
		}

		s.ask(context.Background(), "and now?")

		assert.Equal(t, "and now?", assistant.lastQuery)
		assert.Len(t, assistant.lastHist, 2)
		assert.Len(t, s.history, 4)
	})

	t.Run("stream setup failure leaves history untouched", func(t *testing.T) {
		assistant := &fakeAssistant{streamErr: errors.New("server gone")}
		s, buf := newTestSession(assistant)

		s.ask(context.Background(), "anyone there?")

		assert.Contains(t, buf.String(), "server gone")
		assert.Empty(t, s.history)
	})
}

func TestNewChatStyles_PlainWhenUnstyled(t *testing.T) {
	styles := newChatStyles(false)

	assert.Equal(t, "You: ", styles.prompt.Render("You: "))
}

func TestIsTerminal_FalseForBuffer(t *testing.T) {
	assert.False(t, isTerminal(new(bytes.Buffer)))
}
