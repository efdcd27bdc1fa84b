package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind distinguishes recipe answers from conversational ones.
type Kind string

// Kind constants for bot responses.
const (
	KindConversation Kind = "conversation"
	KindRecipe       Kind = "recipe"
)

// Response is one parsed bot answer. Recipe is set only for KindRecipe.
type Response struct {
	Kind    Kind    `json:"type"`
	Message string  `json:"message,omitempty"`
	Recipe  *Recipe `json:"recipe,omitempty"`
}

// Recipe is a structured recipe recommendation.
type Recipe struct {
	Name                string            `json:"name"`
	Description         string            `json:"description,omitempty"`
	Ingredients         []string          `json:"ingredients,omitempty"`
	Instructions        []string          `json:"instructions,omitempty"`
	Calories            map[string]Amount `json:"calories,omitempty"`
	CuisineType         string            `json:"cuisineType,omitempty"`
	DietaryRestrictions []string          `json:"dietaryRestrictions,omitempty"`
	IsSpicy             bool              `json:"isSpicy"`
	ServingSize         string            `json:"servingSize,omitempty"`
}

// Amount is a nutrition value. Models sometimes answer with "450" or
// "450 kcal" instead of a number, so both forms decode.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	if string(data) == "null" {
		*a = ""
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

type envelope struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
	Recipe
}

// ParseResponse interprets a raw model answer. Markdown code fences are
// stripped first. Anything that is not a recognizable JSON object becomes
// a conversational message carrying the raw text.
func ParseResponse(raw string) Response {
	text := stripFences(raw)

	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return Response{Kind: KindConversation, Message: strings.TrimSpace(raw)}
	}

	switch env.Type {
	case KindRecipe:
		recipe := env.Recipe
		return Response{Kind: KindRecipe, Recipe: &recipe}
	case KindConversation:
		return Response{Kind: KindConversation, Message: env.Message}
	default:
		if env.Message != "" {
			return Response{Kind: KindConversation, Message: env.Message}
		}
		return Response{Kind: KindConversation, Message: strings.TrimSpace(raw)}
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
