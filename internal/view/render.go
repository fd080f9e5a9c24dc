package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded dashboard templates. Stateless given a
// page model.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates}, nil
}

// Dashboard renders the dashboard page. Output goes through a buffer so a
// template failure never emits a torn page.
func (r *Renderer) Dashboard(w io.Writer, page Page) error {
	return r.execute(w, "dashboard.html", page)
}

// LoginPage is the template data for the access gate form.
type LoginPage struct {
	Error string
}

func (r *Renderer) Login(w io.Writer, page LoginPage) error {
	return r.execute(w, "login.html", page)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
