package simpleindex

import (
	"html/template"
	"io"
)

var page = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
  <body>
    {{- range .}}
    <a href="{{.Href}}">{{.Text}}</a>
    {{- end}}
  </body>
</html>
`))

// ContentType is the media type of rendered pages.
const ContentType = "text/html; charset=utf-8"

// Render writes an HTML page with one anchor per link, in order.
func Render(w io.Writer, links []Link) error {
	return page.Execute(w, links)
}
