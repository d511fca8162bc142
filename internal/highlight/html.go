package highlight

import (
	"html/template"
	"io"
	"strings"
)

// The tooltip text is written twice from the same field: as the title
// attribute and as the visible tooltip body.
var htmlTemplate = template.Must(template.New("highlight").Parse(
	`<div class="highlighted-text">` +
		`{{range .}}{{if .Highlighted}}` +
		`<span class="hl-{{.Kind}}" title="{{.Tooltip}}">{{.Text}}<span class="tooltip">{{.Tooltip}}</span></span>` +
		`{{else}}{{.Text}}{{end}}{{end}}` +
		`</div>`))

// WriteHTML renders segments as an HTML fragment.
func WriteHTML(w io.Writer, segs []Segment) error {
	return htmlTemplate.Execute(w, segs)
}

// HTML renders segments as an HTML fragment string.
func HTML(segs []Segment) (string, error) {
	var b strings.Builder
	if err := WriteHTML(&b, segs); err != nil {
		return "", err
	}
	return b.String(), nil
}
