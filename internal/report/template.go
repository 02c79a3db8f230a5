package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"campus_care_backend/internal/complaint"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"section":  newSection,
	"barWidth": barWidth,
}).ParseFS(templateFS, "templates/*.html"))

type section struct {
	Title string
	Label string
	Rows  []complaint.GroupCount
	Max   int64
}

func newSection(title, label string, rows []complaint.GroupCount) section {
	s := section{Title: title, Label: label, Rows: rows}
	for _, r := range rows {
		if r.Total > s.Max {
			s.Max = r.Total
		}
	}
	return s
}

func barWidth(count, max int64) int64 {
	if max <= 0 {
		return 0
	}
	return count * 100 / max
}

type reportPage struct {
	Title  string
	Report *Report
}

type emailPage struct {
	Name       string
	Department string
	Stats      Stats
}

// RenderHTML renders the printable report page.
func RenderHTML(r *Report) (string, error) {
	title := "Infrastructure Damage Report"
	if r.Department != "" {
		title = r.Department + " " + title
	}
	return execute("report.html", reportPage{Title: title, Report: r})
}

func renderEmail(name, department string, stats Stats) (string, error) {
	return execute("email.html", emailPage{Name: name, Department: department, Stats: stats})
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
