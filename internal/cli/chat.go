package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
)

// cmdChat sends a single message, or with -interactive keeps one threaded
// conversation across messages.
func (a *App) cmdChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	interactive := fs.Bool("interactive", false, "keep a conversation open")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if !*interactive {
		message := strings.Join(fs.Args(), " ")
		if message == "" {
			return fmt.Errorf("message argument is required (or use -interactive)")
		}
		resp, err := a.client.Chatbot.Chat(ctx, message, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, resp.Response)
		return nil
	}

	if suggestions, err := a.client.Chatbot.Suggestions(ctx); err == nil && len(suggestions) > 0 {
		fmt.Fprintln(a.stdout, "Try asking:")
		for _, s := range suggestions {
			fmt.Fprintln(a.stdout, "  -", s)
		}
	}

	sessionID := ""
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(a.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}

		resp, err := a.client.Chatbot.Chat(ctx, message, sessionID)
		if err != nil {
			fmt.Fprintln(a.stderr, "Error:", errorMessage(err))
			continue
		}
		sessionID = resp.SessionID
		fmt.Fprintln(a.stdout, resp.Response)
	}
	return scanner.Err()
}
