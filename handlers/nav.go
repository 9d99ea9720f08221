package handlers

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"costconsole/locales"
	"costconsole/templates"
)

var navEntries = []struct {
	label string
	href  string
}{
	{"Nav.Cost", "/cost"},
	{"Nav.Browse", "/cost/browse"},
	{"Nav.Materials", "/materials"},
	{"Nav.Machines", "/machines"},
	{"Nav.Prices", "/prices"},
	{"Nav.Plants", "/plants"},
	{"Nav.Users", "/users"},
	{"Nav.Config", "/config"},
}

// BuildNav returns the sidebar entries with the longest matching one active.
func BuildNav(t locales.Translator, activePath string) []templates.NavItem {
	active := -1
	for i, n := range navEntries {
		if activePath != n.href && !strings.HasPrefix(activePath, n.href+"/") {
			continue
		}
		if active < 0 || len(n.href) > len(navEntries[active].href) {
			active = i
		}
	}

	items := make([]templates.NavItem, len(navEntries))
	for i, n := range navEntries {
		items[i] = templates.NavItem{
			Label:  t.T(n.label),
			Href:   n.href,
			Active: i == active,
		}
	}
	return items
}

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// renderScreen writes partial for HTMX requests and the full page otherwise.
func renderScreen(e *core.RequestEvent, t locales.Translator, titleID string, full, partial templ.Component) error {
	var component templ.Component
	if isHTMX(e) {
		component = partial
	} else {
		path := e.Request.URL.Path
		if e.Request.URL.RawQuery != "" {
			path += "?" + e.Request.URL.RawQuery
		}
		component = templates.Page(templates.LayoutData{
			T:          t,
			Title:      t.T(titleID),
			ActivePath: path,
			Nav:        BuildNav(t, e.Request.URL.Path),
		}, full)
	}
	return component.Render(e.Request.Context(), e.Response)
}

// renderPartial writes c regardless of the request kind.
func renderPartial(e *core.RequestEvent, c templ.Component) error {
	return c.Render(e.Request.Context(), e.Response)
}
