package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/security"
)

// MarshalRedacted renders cfg as YAML with secret-looking values replaced
// by the redaction placeholder. Values matching r's patterns or literals
// are redacted wherever they appear.
func MarshalRedacted(cfg *Config, r *security.Redactor) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshaling: %w", err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("config: re-reading: %w", err)
	}
	if r == nil {
		r = security.NewRedactor()
	}
	r.RedactMap(generic)
	return yaml.Marshal(generic)
}
