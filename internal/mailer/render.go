package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

const noValue = "<no value>"

// Render executes a {{.var}} template against data. Missing keys render empty.
func Render(text string, data any) (string, error) {
	tmpl, err := template.New("msg").Option("missingkey=default").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return strings.ReplaceAll(sb.String(), noValue, ""), nil
}
