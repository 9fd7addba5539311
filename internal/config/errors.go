package config

import "strings"

// ConfigurationError reports missing or malformed configuration. Keys names the
// environment variables involved so operators know what to set.
type ConfigurationError struct {
	Keys   []string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Keys) > 0 {
		b.WriteString(" (missing or invalid: ")
		b.WriteString(strings.Join(e.Keys, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
