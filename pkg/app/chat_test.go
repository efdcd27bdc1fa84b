package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/flemzord/chefbot/internal/chat"
)

// scriptedBot answers turns from a fixed table and records the inputs.
type scriptedBot struct {
	replies map[string]chat.Response
	errs    map[string]error
	inputs  []string
}

func (b *scriptedBot) Greeting() string { return chat.Greeting }

func (b *scriptedBot) Reply(_ context.Context, _ string, input string) (chat.Response, error) {
	b.inputs = append(b.inputs, input)
	if err, ok := b.errs[input]; ok {
		return chat.Response{}, err
	}
	return b.replies[input], nil
}

func TestChatLoop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		want       []string
		notWant    []string
		wantInputs int
	}{
		{
			name:       "exit word",
			input:      "hi\nEXIT\nignored\n",
			want:       []string{chat.Greeting, "Bot: hello there", "Bot: " + chat.Goodbye},
			wantInputs: 1,
		},
		{
			name:       "quit",
			input:      "quit\n",
			want:       []string{"Bot: " + chat.Goodbye},
			wantInputs: 0,
		},
		{
			name:       "blank lines skipped",
			input:      "\n   \nbye\n",
			want:       []string{"Bot: " + chat.Goodbye},
			wantInputs: 0,
		},
		{
			name:       "end of input",
			input:      "hi\n",
			want:       []string{"Bot: hello there"},
			notWant:    []string{chat.Goodbye},
			wantInputs: 1,
		},
		{
			name:       "error apologizes and continues",
			input:      "broken\nhi\nbye\n",
			want:       []string{"An error occurred: provider down", "Bot: " + chat.Apology, "Bot: hello there"},
			wantInputs: 2,
		},
		{
			name:       "recipe is formatted",
			input:      "soup\nbye\n",
			want:       []string{"Recipe: ", "Tomato Soup"},
			wantInputs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bot := &scriptedBot{
				replies: map[string]chat.Response{
					"hi":   {Kind: chat.KindConversation, Message: "hello there"},
					"soup": {Kind: chat.KindRecipe, Recipe: &chat.Recipe{Name: "Tomato Soup"}},
				},
				errs: map[string]error{"broken": errors.New("provider down")},
			}
			var out bytes.Buffer
			if err := ChatLoop(context.Background(), bot, "test", strings.NewReader(tt.input), &out); err != nil {
				t.Fatalf("ChatLoop: %v", err)
			}

			got := out.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("output contains %q:\n%s", w, got)
				}
			}
			if len(bot.inputs) != tt.wantInputs {
				t.Errorf("turns = %v, want %d", bot.inputs, tt.wantInputs)
			}
		})
	}
}

func TestChatLoop_CanceledContextStops(t *testing.T) {
	t.Parallel()

	bot := &scriptedBot{errs: map[string]error{"hi": context.Canceled}}
	var out bytes.Buffer
	err := ChatLoop(context.Background(), bot, "test", strings.NewReader("hi\nhi\n"), &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(bot.inputs) != 1 {
		t.Errorf("turns = %d, want 1", len(bot.inputs))
	}
}
