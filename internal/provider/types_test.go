package provider

import (
	"encoding/json"
	"testing"
)

func TestLLMMessageJSONRoundTrip(t *testing.T) {
	t.Parallel()

	msg := LLMMessage{
		Role:    MessageRoleUser,
		Content: "hello",
		Name:    "alice",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got LLMMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got != msg {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestLLMMessageOmitempty(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(SystemMessage("you are helpful"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	if _, ok := raw["name"]; ok {
		t.Error("expected name to be omitted when empty")
	}
	if raw["role"] != "system" {
		t.Errorf("role = %v, want system", raw["role"])
	}
}

func TestMessageConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  LLMMessage
		role MessageRole
	}{
		{SystemMessage("s"), MessageRoleSystem},
		{UserMessage("u"), MessageRoleUser},
		{AssistantMessage("a"), MessageRoleAssistant},
	}
	for _, tt := range tests {
		if tt.msg.Role != tt.role {
			t.Errorf("role = %q, want %q", tt.msg.Role, tt.role)
		}
	}
}

func TestSummaryRoleIsNotSystem(t *testing.T) {
	t.Parallel()

	if MessageRoleSummary == MessageRoleSystem {
		t.Fatal("summary role must be distinct from system role")
	}
}

func TestCompletionRequestOmitempty(t *testing.T) {
	t.Parallel()

	req := CompletionRequest{
		Messages: []LLMMessage{UserMessage("hi")},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	for _, key := range []string{"max_tokens", "temperature", "stop", "json_mode"} {
		if _, ok := raw[key]; ok {
			t.Errorf("expected %s to be omitted when zero/nil", key)
		}
	}
}

func TestCompletionRequestWithTemperature(t *testing.T) {
	t.Parallel()

	temp := 0.7
	req := CompletionRequest{
		Messages:    []LLMMessage{UserMessage("hi")},
		Temperature: &temp,
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got CompletionRequest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Temperature == nil {
		t.Fatal("expected temperature to be non-nil")
	}
	if *got.Temperature != temp {
		t.Errorf("temperature = %v, want %v", *got.Temperature, temp)
	}
}
