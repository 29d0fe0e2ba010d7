package httpapi

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
	"kg":   func(v float64) string { return fmt.Sprintf("%.2f kg", v) },
}
