package report

import (
	"bytes"
	"html/template"
	"time"
)

// RosterEntry is one volunteer line on the printed roster.
type RosterEntry struct {
	Name           string
	Email          string
	TShirtSize     string
	PreferredHours int
}

// RosterData feeds the roster template.
type RosterData struct {
	EventName   string
	GeneratedAt time.Time
	Entries     []RosterEntry
}

var rosterTemplate = template.Must(template.New("roster").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Volunteer roster – {{.EventName}}</title>
<style>
body { font-family: sans-serif; font-size: 11px; }
h1 { font-size: 16px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
thead { background: #eee; }
</style>
</head>
<body>
<h1>Volunteer roster – {{.EventName}}</h1>
<p>Generated {{.GeneratedAt.Format "2 January 2006 15:04"}} · {{len .Entries}} volunteers</p>
<table>
<thead><tr><th>#</th><th>Name</th><th>Email</th><th>Shirt</th><th>Hours/day</th></tr></thead>
<tbody>
{{range $i, $e := .Entries}}<tr><td>{{inc $i}}</td><td>{{$e.Name}}</td><td>{{$e.Email}}</td><td>{{$e.TShirtSize}}</td><td>{{$e.PreferredHours}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>`))

// RenderRosterHTML renders the roster document for PDF conversion.
func RenderRosterHTML(data RosterData) (string, error) {
	var buf bytes.Buffer
	if err := rosterTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
