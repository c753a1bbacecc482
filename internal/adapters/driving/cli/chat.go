package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// chatStyles holds the lipgloss styles for the interactive session.
// With styling disabled every style renders as plain text.
type chatStyles struct {
	prompt    lipgloss.Style
	assistant lipgloss.Style
	info      lipgloss.Style
	errText   lipgloss.Style
}

// newChatStyles builds the style set. Styling is used only when out is
// a terminal.
func newChatStyles(styled bool) chatStyles {
	if !styled {
		return chatStyles{}
	}
	return chatStyles{
		prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		info:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// isTerminal reports whether fd-backed writers get styled output.
func isTerminal(w io.Writer) bool {
	type fdWriter interface{ Fd() uintptr }
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// chatSession is one interactive conversation.
type chatSession struct {
	assistant driving.Assistant
	sessionID string
	history   []domain.ChatMessage
	out       io.Writer
	styles    chatStyles
}

// runChat starts the interactive loop, reading from the command's input
// until quit/exit or EOF.
func runChat(ctx context.Context, cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	session := &chatSession{
		assistant: a.assistant,
		sessionID: uuid.NewString(),
		out:       out,
		styles:    newChatStyles(isTerminal(out)),
	}

	session.printBanner()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, session.styles.prompt.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		handled, quit := session.handleCommand(input)
		if quit {
			fmt.Fprintln(out, session.styles.info.Render("Goodbye."))
			return nil
		}
		if handled {
			continue
		}

		session.ask(ctx, input)
	}
}

func (s *chatSession) printBanner() {
	fmt.Fprintln(s.out, s.styles.info.Render(
		fmt.Sprintf("Chat session %s started. Type /help for commands, quit to exit.", s.sessionID)))
	stats := s.assistant.Stats()
	fmt.Fprintln(s.out, s.styles.info.Render(
		fmt.Sprintf("Knowledge base: %d chunks from %d files.", stats.TotalRecords, stats.TotalFiles)))
	fmt.Fprintln(s.out)
}

// handleCommand dispatches interactive commands. It reports whether the
// input was a command and whether the session should end.
func (s *chatSession) handleCommand(input string) (handled, quit bool) {
	switch input {
	case "quit", "exit":
		return true, true

	case "/help":
		s.printHelp()
		return true, false

	case "/clear":
		s.history = nil
		fmt.Fprintln(s.out, s.styles.info.Render("Conversation history cleared."))
		return true, false

	case "/history":
		s.printHistory()
		return true, false

	case "/stats":
		s.printStats()
		return true, false

	default:
		if strings.HasPrefix(input, "/") {
			fmt.Fprintln(s.out, s.styles.errText.Render(
				fmt.Sprintf("Unknown command %q. Type /help for commands.", input)))
			return true, false
		}
		return false, false
	}
}

func (s *chatSession) printHelp() {
	fmt.Fprint(s.out, `Commands:
  /help      show this help
  /clear     clear the conversation history
  /history   show the conversation so far
  /stats     show knowledge base statistics
  quit, exit end the session
`)
}

func (s *chatSession) printHistory() {
	if len(s.history) == 0 {
		fmt.Fprintln(s.out, s.styles.info.Render("No conversation history yet."))
		return
	}
	for _, msg := range s.history {
		label := "You"
		if msg.Role == domain.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(s.out, "%s: %s\n", label, msg.Content)
	}
}

func (s *chatSession) printStats() {
	stats := s.assistant.Stats()
	fmt.Fprintf(s.out, "Session:         %s\n", s.sessionID)
	fmt.Fprintf(s.out, "Messages:        %d\n", len(s.history))
	renderStats(s.out, stats)
}

// ask streams one answer. The exchange joins the history only after the
// full answer arrived, so an interrupted stream leaves the history as it
// was.
func (s *chatSession) ask(ctx context.Context, input string) {
	stream, err := s.assistant.StreamAnswer(ctx, input, s.history)
	if err != nil {
		fmt.Fprintln(s.out, s.styles.errText.Render(fmt.Sprintf("Error: %v", err)))
		return
	}
	defer stream.Close()

	fmt.Fprint(s.out, s.styles.assistant.Render("Assistant: "))

	var answer strings.Builder
	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintln(s.out, s.styles.errText.Render(fmt.Sprintf("\nstream error: %v", err)))
			return
		}
		fmt.Fprint(s.out, token)
		answer.WriteString(token)
	}
	fmt.Fprint(s.out, "\n\n")

	s.history = append(s.history,
		domain.ChatMessage{Role: domain.RoleUser, Content: input},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: answer.String()},
	)
}

// renderStats writes index statistics in aligned rows.
func renderStats(w io.Writer, stats domain.IndexStats) {
	fmt.Fprintf(w, "Chunks:          %d\n", stats.TotalRecords)
	fmt.Fprintf(w, "Files:           %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Embedding model: %s\n", stats.EmbeddingModel)
	fmt.Fprintf(w, "Dimensions:      %d\n", stats.Dimensions)
	fmt.Fprintf(w, "Index size:      %d\n", stats.IndexSize)
}
