package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/dashboard.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("dashboard.html.tmpl").Funcs(template.FuncMap{
		"dec":   func(n int) int { return n - 1 },
		"half":  func(n int) float64 { return float64(n) / 2 },
		"float": func(n int) float64 { return float64(n) },
		"sub": func(a, b, c float64) float64 {
			return a - b - c
		},
		"percent": func(i, last int) float64 {
			if last <= 0 {
				return 0
			}
			return float64(i) * 100 / float64(last)
		},
	}).ParseFS(templateFS, "templates/dashboard.html.tmpl"),
)

// Render writes the dashboard page for view.
func Render(w io.Writer, view View) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
