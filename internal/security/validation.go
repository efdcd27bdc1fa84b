package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"
)

// Limits applied to untrusted gateway input when the caller passes 0.
const (
	DefaultMaxMessageSize = 1 << 20 // 1 MiB
	DefaultMaxJSONDepth   = 32
	DefaultMaxTextRunes   = 16000
)

// Validation errors.
var (
	ErrMessageTooLarge = errors.New("message exceeds maximum size")
	ErrJSONTooDeep     = errors.New("JSON nesting exceeds maximum depth")
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrInvalidText     = errors.New("invalid message text")
)

// ValidateMessageSize checks that data does not exceed limit bytes.
func ValidateMessageSize(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxMessageSize
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, len(data), limit)
	}
	return nil
}

// ValidateJSONDepth walks the token stream of data and fails once objects
// or arrays nest deeper than limit.
func ValidateJSONDepth(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxJSONDepth
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			if depth++; depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}

// DecodeJSON validates size and nesting of data, then decodes it into v.
// Unknown fields and trailing data are rejected.
func DecodeJSON(data []byte, v any, maxSize int) error {
	if err := ValidateMessageSize(data, maxSize); err != nil {
		return err
	}
	if err := ValidateJSONDepth(data, 0); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}
	return nil
}

// ValidateText checks a user turn before it reaches conversation memory:
// valid UTF-8, at most maxRunes runes, and no control characters other
// than tab, newline and carriage return.
func ValidateText(text string, maxRunes int) error {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxTextRunes
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidText)
	}
	if n := utf8.RuneCountInString(text); n > maxRunes {
		return fmt.Errorf("%w: %d characters (max %d)", ErrInvalidText, n, maxRunes)
	}
	for i, r := range text {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return fmt.Errorf("%w: control character %U at byte %d", ErrInvalidText, r, i)
		}
	}
	return nil
}
