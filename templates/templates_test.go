package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"costconsole/locales"
	"costconsole/services"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func english() locales.Translator {
	return locales.NewTranslator(locales.NewBundle(), locales.English)
}

func TestGridBody_EscapesCells(t *testing.T) {
	body := render(t, GridBody(GridData{
		T:       english(),
		ID:      "materials",
		Columns: []GridCell{{Value: "Key"}, {Value: "KS", Standard: true}},
		Rows:    [][]GridCell{{{Value: `<b>MAT-001</b>`}, {Value: "S45C", Standard: true}}},
		Pager:   PagerData{Path: "/materials", Query: "q=a%26b", Target: "materials-grid", Current: 1, Total: 3, HasNext: true},
	}))

	if strings.Contains(body, "<b>MAT-001</b>") {
		t.Error("expected cell text to be escaped")
	}
	if !strings.Contains(body, "&lt;b&gt;MAT-001&lt;/b&gt;") {
		t.Errorf("expected escaped cell, got %s", body)
	}
	if !strings.Contains(body, `<td class="std">S45C</td>`) {
		t.Error("expected standard cells to be marked")
	}
	if !strings.Contains(body, `hx-get="/materials?q=a%26b&amp;page=2"`) {
		t.Errorf("expected next-page link to keep the filter query, got %s", body)
	}
}

func TestGridBody_Empty(t *testing.T) {
	body := render(t, GridBody(GridData{T: english(), Pager: PagerData{Total: 1, Current: 1}}))
	if !strings.Contains(body, `<p class="empty">`) {
		t.Error("expected the empty message")
	}
	if !strings.Contains(body, " disabled") {
		t.Error("expected disabled pager links")
	}
}

func TestPage_MarksActiveNav(t *testing.T) {
	body := render(t, Page(LayoutData{
		T:          english(),
		Title:      "Machines",
		ActivePath: "/machines",
		Nav: []NavItem{
			{Label: "Materials", Href: "/materials"},
			{Label: "Machines", Href: "/machines", Active: true},
		},
	}, templ.Raw("<p>content</p>")))

	if !strings.Contains(body, `<a href="/machines" class="active" aria-current="page">`) {
		t.Error("expected the active entry to be marked")
	}
	if strings.Contains(body, `<a href="/materials" class="active"`) {
		t.Error("expected only one active entry")
	}
	if !strings.Contains(body, `name="lang" value="ko"`) {
		t.Error("expected the switch to offer Korean from English")
	}
	if !strings.Contains(body, "<p>content</p>") {
		t.Error("expected the content")
	}
}

func TestCostTree_LoadingAndEmpty(t *testing.T) {
	roots := []services.TreeNode{
		{UniqueID: "f_1", Kind: services.KindFolder, DisplayName: "Private folder", Expanded: true, ChildrenLoaded: true},
		{UniqueID: "f_2", Kind: services.KindFolder, DisplayName: "Public & shared"},
	}
	body := render(t, CostTree(CostTreeData{T: english(), Roots: roots, Loading: map[string]bool{"f_2": true}}))

	for _, want := range []string{
		`hx-post="/cost/toggle?uid=f_1"`,
		"No child items.",
		"Public &amp; shared",
		`<p class="loading">`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in %s", want, body)
		}
	}
}

func TestImportPreview_InvalidRegion(t *testing.T) {
	body := render(t, ImportPreview(PlantData{
		T:    english(),
		Kind: services.KindPlant,
		Preview: &services.ImportPreview{
			Kind:     services.KindPlant,
			FileName: "plants.xlsx",
			Sheets:   []string{"Plants", "Other"},
			Current:  "Plants",
			Rows: []services.MasterDataRow{
				{Key: "P-01", Region: "KR", ValidRegion: true},
				{Key: "P-02", Region: "ZZ"},
			},
		},
	}))
	for _, want := range []string{`name="sheet"`, `<option value="Plants" selected>`, `class="invalid"`, `name="confirm"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in %s", want, body)
		}
	}
}

func TestPage_WithoutContent(t *testing.T) {
	body := render(t, Page(LayoutData{
		T:     english(),
		Title: "Materials",
		Nav:   []NavItem{{Label: "Bad", Href: "javascript:alert(1)"}},
	}, nil))

	if !strings.Contains(body, "<h1>Materials</h1></main>") {
		t.Errorf("expected an empty main section, got %s", body)
	}
	if strings.Contains(body, "javascript:") {
		t.Error("expected unsafe nav links to be sanitized")
	}
}

func TestPager_IncludesFilters(t *testing.T) {
	body := render(t, Pager(english(), PagerData{
		Path: "/machines", Target: "machines-grid", Filters: "machines-filters",
		Current: 2, Total: 3, HasPrev: true, Input: "2",
	}))

	for _, want := range []string{
		`hx-get="/machines?page=1" hx-target="#machines-grid">`,
		`hx-include="#machines-filters"`,
		`value="2"> / 3 <button type="submit">`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in %s", want, body)
		}
	}
}

func TestCostBrowse_Breadcrumbs(t *testing.T) {
	body := render(t, CostBrowse(CostBrowseData{
		T:    english(),
		Path: []services.TreeNode{{UniqueID: "f_1", DisplayName: "Private folder"}},
	}))

	if !strings.Contains(body, ` / <button type="button" hx-post="/cost/browse/jump?index=0"`) {
		t.Errorf("expected a separated crumb, got %s", body)
	}
	if !strings.Contains(body, `hx-post="/cost/browse/up"`) {
		t.Error("expected the up button below the root")
	}
}

func TestImportPreview_NoPreview(t *testing.T) {
	if body := render(t, ImportPreview(PlantData{T: english()})); body != "" {
		t.Errorf("expected nothing without a preview, got %q", body)
	}
}
