// Package view renders the admin page. It knows nothing about how links are
// stored; callers hand it a fully prepared AdminPage.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/admin.html.tmpl
var templateFS embed.FS

// LastAccessLayout is how last-access times are shown on the page.
const LastAccessLayout = "2006-01-02 15:04:05 MST"

var adminTemplate = template.Must(
	template.New("admin.html.tmpl").
		Funcs(template.FuncMap{"lastAccess": formatLastAccess}).
		ParseFS(templateFS, "templates/admin.html.tmpl"),
)

// orderOptions are the sort orders offered by the page, in display order.
var orderOptions = []struct {
	Value string
	Label string
}{
	{"slug", "Name (A-Z)"},
	{"hits", "Hits (desc)"},
	{"last", "Last access"},
}

// AdminPage is everything shown on one rendering of the admin page.
type AdminPage struct {
	Message   string
	Order     string
	Links     []LinkRow
	TotalHits int64
}

// LinkRow is one table row. A nil LastAccess renders as "Never".
type LinkRow struct {
	Slug       string
	URL        string
	Hits       int64
	LastAccess *time.Time
}

type orderOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	AdminPage
	Orders []orderOption
}

// RenderAdminPage writes the admin page for page to w.
func RenderAdminPage(w io.Writer, page AdminPage) error {
	data := pageData{AdminPage: page}
	for _, o := range orderOptions {
		data.Orders = append(data.Orders, orderOption{
			Value:    o.Value,
			Label:    o.Label,
			Selected: o.Value == page.Order,
		})
	}

	if err := adminTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render admin page: %w", err)
	}
	return nil
}

func formatLastAccess(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Format(LastAccessLayout)
}
