package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"mdnotes/internal/editor"
)

//go:embed assets
var assetsFS embed.FS

type Templates struct {
	all *template.Template
}

type toolButton struct {
	Cmd   string
	Label string
	Title string
}

type toolGroup struct {
	Name    string
	Buttons []toolButton
}

type pageData struct {
	Title   string
	Toolbar []toolGroup
	Colors  []string
}

var toolbar = []toolGroup{
	{Name: "inline", Buttons: []toolButton{
		{editor.CmdBold, "B", "Bold"},
		{editor.CmdItalic, "I", "Italic"},
		{editor.CmdLink, "Link", "Link"},
		{editor.CmdCode, "Code", "Code block"},
	}},
	{Name: "headings", Buttons: []toolButton{
		{"h1", "H1", "Heading 1"},
		{"h2", "H2", "Heading 2"},
		{"h3", "H3", "Heading 3"},
	}},
	{Name: "blocks", Buttons: []toolButton{
		{editor.CmdUL, "List", "Bulleted list"},
		{editor.CmdOL, "1.", "Numbered list"},
		{editor.CmdQuote, "Quote", "Quote"},
		{editor.CmdHR, "HR", "Horizontal rule"},
	}},
	{Name: "align", Buttons: []toolButton{
		{"align-left", "Left", "Align left"},
		{"align-center", "Center", "Align center"},
		{"align-right", "Right", "Align right"},
		{"align-justify", "Justify", "Justify"},
	}},
}

var textColors = []string{"#d73a49", "#22863a", "#005cc5", "#6f42c1", "#e36209"}

func ParseTemplates() (*Templates, error) {
	t, err := template.New("").ParseFS(assetsFS, "assets/*.html")
	if err != nil {
		return nil, err
	}
	return &Templates{all: t}, nil
}

func (t *Templates) RenderTemplate(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := t.all.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render template", "template", name, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.views.RenderTemplate(w, "index.html", pageData{
		Title:   "Notes",
		Toolbar: toolbar,
		Colors:  textColors,
	})
}

func (s *Server) handleChromaCSS(w http.ResponseWriter, r *http.Request) {
	css, err := s.md.CSS()
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(css))
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
