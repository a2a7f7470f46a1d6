package web

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	applog "lanecal/internal/log"
)

// handleCalendarPage renders the month view as plain HTML. The root
// element carries data-ready="true" once rendered; the capture pipeline
// waits on that attribute before screenshotting.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year := queryInt(r, "year", now.Year())
	monthNum := queryInt(r, "month", int(now.Month()))
	if monthNum < 1 || monthNum > 12 || year < 1970 || year > 9999 {
		http.Error(w, "year or month out of range", http.StatusBadRequest)
		return
	}
	month := time.Month(monthNum)

	cells, _ := s.buildCells(year, month)

	data := pageData{
		Title:    month.String() + " " + strconv.Itoa(year),
		Weekdays: []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		Cells:    cells,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		applog.Error("web: calendar page render failed", err)
	}
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

type pageData struct {
	Title    string
	Weekdays []string
	Cells    []cellDTO
}

var pageTmpl = template.Must(template.New("calendar").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 16px; }
h1 { font-size: 20px; }
.grid { display: grid; grid-template-columns: repeat(7, 1fr); gap: 2px; }
.head { font-weight: bold; text-align: center; padding: 4px 0; }
.cell { min-height: 84px; border: 1px solid #e2e8f0; padding: 2px; }
.cell.blank { border: none; }
.cell.today { border-color: #0ea5e9; border-width: 2px; }
.cell.disabled { background: #f1f5f9; color: #94a3b8; }
.daynum { font-size: 12px; margin-bottom: 2px; }
.lane { height: 16px; font-size: 11px; color: #fff; margin-bottom: 1px;
        padding: 0 3px; overflow: hidden; white-space: nowrap; }
.lane.empty { visibility: hidden; }
.lane.vstart { border-top-left-radius: 6px; border-bottom-left-radius: 6px; }
.lane.vend { border-top-right-radius: 6px; border-bottom-right-radius: 6px; }
.more { font-size: 10px; color: #64748b; }
</style>
</head>
<body data-ready="true">
<h1>{{.Title}}</h1>
<div class="grid">
{{range .Weekdays}}<div class="head">{{.}}</div>{{end}}
{{range .Cells}}{{if .Blank}}<div class="cell blank"></div>{{else}}<div class="cell{{if .IsToday}} today{{end}}{{if .IsDisabled}} disabled{{end}}">
<div class="daynum">{{.Day}}</div>
{{range .Slots}}{{if .}}<div class="lane{{if .IsVisualStart}} vstart{{end}}{{if .IsVisualEnd}} vend{{end}}" style="background:{{.Color}}">{{.Label}}</div>{{else}}<div class="lane empty"></div>{{end}}{{end}}
{{if .Overflow}}<div class="more">+{{.Overflow}} more</div>{{end}}
</div>{{end}}{{end}}
</div>
</body>
</html>
`))
