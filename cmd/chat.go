package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /history    list stored conversations
  /open N     replace the conversation with stored conversation N
  /new        start an empty conversation
  /quit       leave (also Ctrl-D)
  /help       show this help
Anything else is sent as a question.`

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the knowledge assistant.

Each line you enter is sent as a question; the answer is appended below it.
While logged in, the whole conversation is saved to your history after
every answer, and /history and /open give access to stored conversations.

` + chatHelp,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cs := internal.NewChatSession(a.client, a.auth, a.agentOptions()...)
		cs.Start(cmd.Context())
		defer cs.Close()

		return runChat(cmd, cs)
	},
}

func runChat(cmd *cobra.Command, cs *internal.ChatSession) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	status := "not logged in, conversations will not be saved"
	if cs.Auth.Authenticated() {
		status = fmt.Sprintf("%d stored conversation(s)", cs.History.Len())
	}
	renderHeader(out, "Knowledge Console", cfg.APIURL, status)
	_, _ = fmt.Fprintln(out, metaStyle.Render("Type /help for commands."))

	// entries already on screen
	shown := 0
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !in.Scan() {
			_, _ = fmt.Fprintln(out)
			break
		}
		line := in.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "/") {
			quit, err := chatMeta(out, cs, strings.Fields(line))
			if err != nil {
				internal.PrintError(out, err.Error())
			}
			if quit {
				break
			}
			shown = cs.Store.Len()
			continue
		}

		var outcome internal.Outcome
		internal.ShowProgress(cmd.Context(), out, "Assistant is typing...", func() {
			outcome = cs.Submit(cmd.Context(), line)
		})
		switch outcome {
		case internal.OutcomeRejectedEmpty:
			continue
		case internal.OutcomeRejectedBusy:
			internal.PrintWarning(out, "still waiting for the previous answer")
			continue
		}

		entries := cs.Store.Entries()
		for i := shown; i < len(entries); i++ {
			renderEntry(out, i+1, 0, entries[i])
		}
		shown = len(entries)

		if cmd.Context().Err() != nil {
			break
		}
	}

	if err := in.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// chatMeta runs a slash command and reports whether to leave the loop.
func chatMeta(out io.Writer, cs *internal.ChatSession, fields []string) (bool, error) {
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		_, _ = fmt.Fprintln(out, chatHelp)
	case "/new":
		if err := cs.Reset(); err != nil {
			return false, err
		}
		internal.PrintInfo(out, "Started a new conversation.")
	case "/history":
		printHistory(out, cs.History.Summaries(), cs.Auth.Authenticated())
	case "/open":
		if len(fields) != 2 {
			return false, errors.New("usage: /open N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("not a conversation number: %s", fields[1])
		}
		if err := cs.Open(n - 1); err != nil {
			return false, err
		}
		entries := cs.Store.Entries()
		renderHeader(out, fmt.Sprintf("Chat #%d", n), fmt.Sprintf("Messages: %d", len(entries)))
		renderConversation(out, entries)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
	return false, nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
