// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses every page template with funcs available. Templates are named by file name.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
