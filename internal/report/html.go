package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"time"
)

//go:embed templates/*
var templates embed.FS

type htmlData struct {
	*Document
	GeneratedAt string
}

func writeHTML(path string, doc *Document) error {
	funcMap := template.FuncMap{
		"percent": func(rate float64) string {
			return fmt.Sprintf("%.1f%%", rate*100)
		},
		"ms": func(v float64) string {
			return fmt.Sprintf("%.0f ms", v)
		},
	}

	tmpl, err := template.New("report.tmpl").Funcs(funcMap).ParseFS(templates, "templates/report.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data := htmlData{
		Document:    doc,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	return tmpl.Execute(file, data)
}
