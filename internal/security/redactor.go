package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches map keys that likely contain secrets.
// Only whole words at the end of a key count, so "tokenizer" and
// "key_prefix" stay visible.
var secretKeyPattern = regexp.MustCompile(`(?i)(^|_)(secret|token|password|pass|key|credential)s?$`)

// Redactor replaces secret values in strings and maps with a redaction placeholder.
// It supports both regex pattern matching (for known API key formats) and
// literal value matching (for credentials loaded at runtime).
// All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with DefaultPatterns and the
// given literal secrets, such as the configured API key and gateway token.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{patterns: DefaultPatterns()}
	for _, s := range secrets {
		r.AddLiteral(s)
	}
	return r
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds a literal secret value that should be redacted on sight.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Literals returns the number of literal secrets registered.
func (r *Redactor) Literals() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.literals)
}

// Redact replaces all known secret patterns and literal values in s
// with RedactPlaceholder. A nil Redactor returns s unchanged.
func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	// Apply regex patterns first.
	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}

	// Apply literal replacements.
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}

	return s
}

// AddSecretsFrom walks m and registers the string values of secret-named
// keys as literals, so a key read from config is redacted wherever it is
// later echoed.
func (r *Redactor) AddSecretsFrom(m map[string]any) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if secretKeyPattern.MatchString(k) {
				r.AddLiteral(val)
			}
		case map[string]any:
			r.AddSecretsFrom(val)
		case []any:
			for _, item := range val {
				if sub, ok := item.(map[string]any); ok {
					r.AddSecretsFrom(sub)
				}
			}
		}
	}
}

// RedactMap walks a map and replaces values whose keys match common secret
// key names (secret, token, password, key, api_key, credential).
// This is used for config display endpoints.
func (r *Redactor) RedactMap(m map[string]any) {
	for k, v := range m {
		if secretKeyPattern.MatchString(k) {
			if s, ok := v.(string); ok && s != "" {
				m[k] = RedactPlaceholder
				continue
			}
			// Fall through to handle nested maps/slices under secret-named keys.
		}
		switch val := v.(type) {
		case map[string]any:
			r.RedactMap(val)
		case []any:
			for _, item := range val {
				if sub, ok := item.(map[string]any); ok {
					r.RedactMap(sub)
				}
			}
		case string:
			if redacted := r.Redact(val); redacted != val {
				m[k] = redacted
			}
		}
	}
}

// DefaultPatterns returns compiled regex patterns for the credential
// formats chefbot handles: OpenAI keys, bearer headers and redis URLs.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// OpenAI: sk-..., sk-proj-..., sk-svcacct-... (at least 20 chars)
		regexp.MustCompile(`sk-(proj-|svcacct-)?[a-zA-Z0-9_\-]{20,}`),
		// Authorization header values
		regexp.MustCompile(`(?i)bearer [a-zA-Z0-9._\-]{16,}`),
		// Passwords embedded in redis:// and rediss:// URLs
		regexp.MustCompile(`rediss?://[^:@/\s]*:[^@/\s]+@`),
	}
}
