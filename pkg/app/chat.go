package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flemzord/chefbot/internal/chat"
)

// Replier answers one user turn. *chat.Bot implements it.
type Replier interface {
	Greeting() string
	Reply(ctx context.Context, conversationID, input string) (chat.Response, error)
}

var _ Replier = (*chat.Bot)(nil)

// ChatLoop greets the user, then answers each line read from in until an
// exit word, end of input or cancellation of ctx. A failed turn prints an
// apology and the loop continues.
func ChatLoop(ctx context.Context, bot Replier, conversationID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, bot.Greeting())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExitWord(input) {
			fmt.Fprintln(out, "\nBot: "+chat.Goodbye)
			return nil
		}

		resp, err := bot.Reply(ctx, conversationID, input)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			fmt.Fprintf(out, "\nAn error occurred: %v\n", err)
			fmt.Fprintln(out, "\nBot: "+chat.Apology)
			continue
		}

		if resp.Kind == chat.KindRecipe {
			fmt.Fprintln(out)
			if err := chat.FormatRecipe(out, resp.Recipe); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, "\nBot: "+resp.Message)
	}
}

func isExitWord(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
