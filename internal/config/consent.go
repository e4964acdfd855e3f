package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConsentTemplateVersion is the only template file version understood.
const ConsentTemplateVersion = 1

// ConsentTemplate lists the accepted consent keys. A true value marks the
// consent as mandatory: it must be present and accepted.
type ConsentTemplate struct {
	Version     int             `yaml:"version" validate:"eq=1"`
	Preferences map[string]bool `yaml:"preferences"`
}

// DefaultConsentTemplate is used when no template file is configured.
func DefaultConsentTemplate() ConsentTemplate {
	return ConsentTemplate{
		Version: ConsentTemplateVersion,
		Preferences: map[string]bool{
			"marketing_emails":         false,
			"third_party_data_sharing": false,
			"cookies_acceptance":       false,
			"personalized_ads":         false,
			"analytics_tracking":       false,
			"location_tracking":        false,
			"push_notifications":       false,
			"privacy_policy":           true,
			"terms_and_conditions":     true,
		},
	}
}

// LoadConsentTemplate decodes a template file. Unknown fields are an error.
func LoadConsentTemplate(path string) (*ConsentTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read consent template: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tmpl ConsentTemplate
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("decode consent template %s: %w", path, err)
	}
	if tmpl.Version != ConsentTemplateVersion {
		return nil, fmt.Errorf("consent template %s: unsupported version %d", path, tmpl.Version)
	}
	if len(tmpl.Preferences) == 0 {
		return nil, fmt.Errorf("consent template %s: no preferences", path)
	}
	return &tmpl, nil
}

// Mandatory returns a copy of the template for the validator.
func (t ConsentTemplate) Mandatory() map[string]bool {
	out := make(map[string]bool, len(t.Preferences))
	for k, v := range t.Preferences {
		out[k] = v
	}
	return out
}
