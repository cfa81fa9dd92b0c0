// Package web holds the HTML views of both applications.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
}

// Templates parses the shared layout plus the page set of app ("blog" or
// "todo"). Pages are addressed as "<app>/<page>.html"; the shared error page
// is "error.html".
func Templates(app string) (*template.Template, error) {
	switch app {
	case "blog", "todo":
	default:
		return nil, fmt.Errorf("no templates for application %q", app)
	}

	tmpl, err := template.New(app).Funcs(funcs).ParseFS(templateFS,
		"templates/*.html",
		"templates/"+app+"/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s templates: %w", app, err)
	}
	return tmpl, nil
}
