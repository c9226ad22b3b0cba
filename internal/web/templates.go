package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"list.html", "detail.html", "edit.html", "login.html"}

// parseTemplates builds one template set per page, each paired with the
// base layout so page-level "content" blocks do not collide.
func parseTemplates() (map[string]*template.Template, error) {
	sets := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		sets[page] = t
	}
	return sets, nil
}
