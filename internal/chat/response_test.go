package chat

import "testing"

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantKind    Kind
		wantMessage string
		wantRecipe  string
	}{
		{
			name:        "conversation",
			raw:         `{"type":"conversation","message":"Any allergies?"}`,
			wantKind:    KindConversation,
			wantMessage: "Any allergies?",
		},
		{
			name:       "recipe",
			raw:        `{"type":"recipe","name":"Pad Thai","ingredients":["noodles"]}`,
			wantKind:   KindRecipe,
			wantRecipe: "Pad Thai",
		},
		{
			name:       "fenced recipe",
			raw:        "```json\n{\"type\":\"recipe\",\"name\":\"Pho\"}\n```",
			wantKind:   KindRecipe,
			wantRecipe: "Pho",
		},
		{
			name:        "plain text",
			raw:         "  Sure, what do you like?  ",
			wantKind:    KindConversation,
			wantMessage: "Sure, what do you like?",
		},
		{
			name:        "unknown type with message",
			raw:         `{"type":"other","message":"hello"}`,
			wantKind:    KindConversation,
			wantMessage: "hello",
		},
		{
			name:        "json array",
			raw:         `[1,2]`,
			wantKind:    KindConversation,
			wantMessage: `[1,2]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseResponse(tt.raw)
			if got.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", got.Message, tt.wantMessage)
			}
			if tt.wantRecipe != "" {
				if got.Recipe == nil || got.Recipe.Name != tt.wantRecipe {
					t.Errorf("recipe = %+v, want name %q", got.Recipe, tt.wantRecipe)
				}
			} else if got.Recipe != nil {
				t.Errorf("unexpected recipe %+v", got.Recipe)
			}
		})
	}
}

func TestAmount_DecodesNumbersAndStrings(t *testing.T) {
	t.Parallel()

	got := ParseResponse(`{"type":"recipe","name":"x","calories":{"a":320,"b":"450 kcal","c":12.5,"d":null}}`)
	if got.Recipe == nil {
		t.Fatal("expected recipe")
	}
	want := map[string]Amount{"a": "320", "b": "450 kcal", "c": "12.5", "d": ""}
	for k, v := range want {
		if got.Recipe.Calories[k] != v {
			t.Errorf("calories[%s] = %q, want %q", k, got.Recipe.Calories[k], v)
		}
	}
}
