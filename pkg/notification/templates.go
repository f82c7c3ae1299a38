package notification

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFiles embed.FS

// LoadTemplate reads an embedded default template. A missing file is a
// packaging mistake; it is logged and an empty template returned so the
// caller can skip the optional body.
func LoadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// RenderText renders a text template with the given data.
func RenderText(tmpl string, data map[string]string) (string, error) {
	t, err := texttemplate.New("text").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTML renders an HTML template with the given data, escaping values.
func RenderHTML(tmpl string, data map[string]string) (string, error) {
	t, err := htmltemplate.New("html").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
