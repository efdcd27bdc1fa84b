package security

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateMessageSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		max     int
		wantErr error
	}{
		{name: "within limit", size: 100, max: 1024, wantErr: nil},
		{name: "at limit", size: 1024, max: 1024, wantErr: nil},
		{name: "over limit", size: 1025, max: 1024, wantErr: ErrMessageTooLarge},
		{name: "zero max uses default", size: 100, max: 0, wantErr: nil},
		{name: "empty data", size: 0, max: 100, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := make([]byte, tt.size)
			err := ValidateMessageSize(data, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessageSize(size=%d, max=%d) = %v, want %v",
					tt.size, tt.max, err, tt.wantErr)
			}
		})
	}
}

func TestValidateJSONDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		json    string
		max     int
		wantErr error
	}{
		{
			name:    "flat object",
			json:    `{"key": "value"}`,
			max:     2,
			wantErr: nil,
		},
		{
			name:    "nested within limit",
			json:    `{"a": {"b": {"c": 1}}}`,
			max:     3,
			wantErr: nil,
		},
		{
			name:    "nested over limit",
			json:    `{"a": {"b": {"c": {"d": 1}}}}`,
			max:     3,
			wantErr: ErrJSONTooDeep,
		},
		{
			name:    "array nesting",
			json:    `[[[1]]]`,
			max:     3,
			wantErr: nil,
		},
		{
			name:    "array over limit",
			json:    `[[[[1]]]]`,
			max:     3,
			wantErr: ErrJSONTooDeep,
		},
		{
			name:    "empty data",
			json:    "",
			max:     1,
			wantErr: nil,
		},
		{
			name:    "simple string",
			json:    `"hello"`,
			max:     1,
			wantErr: nil,
		},
		{
			name:    "zero max uses default",
			json:    `{"key": "value"}`,
			max:     0,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateJSONDepth([]byte(tt.json), tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateJSONDepth(%q, %d) = %v, want %v",
					tt.json, tt.max, err, tt.wantErr)
			}
		})
	}
}

func TestValidateJSONDepth_DeepNesting(t *testing.T) {
	t.Parallel()

	// Build a deeply nested JSON: {"a":{"a":{"a":...}}}
	depth := 50
	var sb strings.Builder
	for range depth {
		sb.WriteString(`{"a":`)
	}
	sb.WriteString("1")
	for range depth {
		sb.WriteString("}")
	}

	err := ValidateJSONDepth([]byte(sb.String()), 32)
	if !errors.Is(err, ErrJSONTooDeep) {
		t.Errorf("expected ErrJSONTooDeep for depth %d, got %v", depth, err)
	}
}

func BenchmarkValidateJSONDepth(b *testing.B) {
	// Moderately nested JSON.
	data := []byte(`{"users": [{"name": "Alice", "profile": {"age": 30, "address": {"city": "NYC"}}}]}`)
	b.ResetTimer()
	for range b.N {
		_ = ValidateJSONDepth(data, 32)
	}
}

func BenchmarkValidateMessageSize(b *testing.B) {
	data := make([]byte, 4096)
	b.ResetTimer()
	for range b.N {
		_ = ValidateMessageSize(data, DefaultMaxMessageSize)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type body struct {
		Message string `json:"message"`
	}

	tests := []struct {
		name    string
		data    string
		max     int
		want    string
		wantErr error
	}{
		{name: "valid", data: `{"message":"hi"}`, want: "hi"},
		{name: "unknown field", data: `{"message":"hi","x":1}`, wantErr: ErrInvalidJSON},
		{name: "malformed", data: `{"message":`, wantErr: ErrInvalidJSON},
		{name: "trailing", data: `{"message":"a"}{"message":"b"}`, wantErr: ErrInvalidJSON},
		{name: "too large", data: `{"message":"hello"}`, max: 4, wantErr: ErrMessageTooLarge},
		{name: "too deep", data: `{"message":` + strings.Repeat("[", 40) + strings.Repeat("]", 40) + `}`, wantErr: ErrJSONTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var b body
			err := DecodeJSON([]byte(tt.data), &b, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeJSON() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && b.Message != tt.want {
				t.Errorf("message = %q, want %q", b.Message, tt.want)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		max     int
		wantErr bool
	}{
		{name: "plain", text: "Something with chickpeas?", max: 0},
		{name: "multiline", text: "I have:\n\t- rice\r\n\t- eggs", max: 0},
		{name: "accents count as runes", text: "crème brûlée", max: 12},
		{name: "too long", text: "crème brûlée", max: 11, wantErr: true},
		{name: "nul byte", text: "rice\x00", max: 0, wantErr: true},
		{name: "escape sequence", text: "\x1b[31mred", max: 0, wantErr: true},
		{name: "invalid utf8", text: "\xff\xfe", max: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateText(tt.text, tt.max)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidText) {
					t.Errorf("ValidateText(%q) = %v, want ErrInvalidText", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateText(%q) = %v", tt.text, err)
			}
		})
	}
}
