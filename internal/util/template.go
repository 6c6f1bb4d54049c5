// Package util holds small helpers shared by the router and the agents.
package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

var promptFuncs = template.FuncMap{
	"default": func(fallback, val any) any {
		if val == nil || val == "" {
			return fallback
		}
		return val
	},
	"trim":  strings.TrimSpace,
	"runes": utf8.RuneCountInString,
}

// RenderTemplate fills a prompt template with vars. Text without template
// markers is returned as is. Prompts are plain text, so nothing is escaped,
// and a reference to a missing var is an error rather than "<no value>".
func RenderTemplate(text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").
		Option("missingkey=error").
		Funcs(promptFuncs).
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
