package api

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/blogging-tool/internal/validation"
	"github.com/gin-gonic/gin"
)

// DisplayLayout is how timestamps are shown on rendered pages
const DisplayLayout = "2006-01-02 15:04:05"

//go:embed web
var webFS embed.FS

func loadTemplates(loc *time.Location) *template.Template {
	funcs := template.FuncMap{
		"localtime": func(v any) string {
			return localTime(v, loc)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(webFS, "web/templates/*.html"))
}

// localTime formats a time or *time.Time in loc; zero and nil render empty
func localTime(v any, loc *time.Location) string {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return ""
		}
		t = *tv
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DisplayLayout)
}

// render executes a page template with the per-request user and publish message
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = currentUser(c)
	if msg := c.GetString(publishMessageKey); msg != "" {
		data["publishMessage"] = msg
	}
	c.HTML(status, name, data)
}

// renderError shows the generic error page
func renderError(c *gin.Context, status int, message string) {
	render(c, status, "error.html", gin.H{
		"status":  status,
		"message": message,
	})
}

// bindForm decodes the request body into form, answering 400 when the body
// cannot be parsed at all. Missing fields are left to validation.
func bindForm(c *gin.Context, form any) bool {
	if err := c.ShouldBind(form); err != nil {
		renderError(c, http.StatusBadRequest, "Invalid form submission.")
		return false
	}
	return true
}

// messageErrors wraps a single form-level message for the errors list of a template
func messageErrors(msg string) validation.Errors {
	return validation.Errors{{Message: msg}}
}

// articleID parses the :id path parameter
func articleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// notFound renders the 404 page
func notFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "Article not found")
}
