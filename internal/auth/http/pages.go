package http

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// loginPageData feeds the login template.
type loginPageData struct {
	CSRFToken  string
	Error      string
	Registered bool
}

// registerPageData feeds the register template.
type registerPageData struct {
	CSRFToken   string
	Username    string
	FieldErrors map[string]string
	Error       string
}

func renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplates.ExecuteTemplate(w, name, data)
}
