package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"

	"costconsole/locales"
	"costconsole/testhelpers"
)

func activeHref(t *testing.T, activePath string) string {
	t.Helper()
	tr := locales.NewTranslator(locales.NewBundle(), locales.English)
	active := ""
	for _, item := range BuildNav(tr, activePath) {
		if !item.Active {
			continue
		}
		if active != "" {
			t.Fatalf("more than one active entry for %q", activePath)
		}
		active = item.Href
	}
	return active
}

func TestBuildNav_LongestMatchIsActive(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/cost", "/cost"},
		{"/cost/browse", "/cost/browse"},
		{"/cost/toggle", "/cost"},
		{"/users/abc/edit", "/users"},
		{"/materials", "/materials"},
		{"/materialsx", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := activeHref(t, tt.path); got != tt.want {
			t.Errorf("BuildNav(%q) active = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBuildNav_TranslatesLabels(t *testing.T) {
	tr := locales.NewTranslator(locales.NewBundle(), locales.Korean)
	items := BuildNav(tr, "/cost")
	if len(items) != len(navEntries) {
		t.Fatalf("expected %d entries, got %d", len(navEntries), len(items))
	}
	if items[0].Label != "원가 탐색기" {
		t.Errorf("expected Korean label, got %q", items[0].Label)
	}
}

func TestRenderScreen_FullPageAndPartial(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tr := locales.NewTranslator(locales.NewBundle(), locales.English)
	full := templ.Raw(`<section id="full">`)
	partial := templ.Raw(`<section id="partial">`)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/materials?q=steel", nil)
	if err := renderScreen(newTestRequestEvent(app, req, rec), tr, "Material.Title", full, partial); err != nil {
		t.Fatal(err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"<!DOCTYPE html>",
		`<section id="full">`,
		`href="/materials" class="active"`,
		`name="redirect" value="/materials?q=steel"`,
	)
	testhelpers.AssertHTMLNotContains(t, body, `<section id="partial">`)

	rec = httptest.NewRecorder()
	req = htmxRequest(http.MethodGet, "/materials?q=steel", nil)
	if err := renderScreen(newTestRequestEvent(app, req, rec), tr, "Material.Title", full, partial); err != nil {
		t.Fatal(err)
	}
	if rec.Body.String() != `<section id="partial">` {
		t.Errorf("expected only the partial, got %q", rec.Body.String())
	}
}
