package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"costconsole/services"
	"costconsole/sqlexec"
	"costconsole/testhelpers"
)

func materialExecutor() *testhelpers.FakeExecutor {
	return testhelpers.NewFakeExecutor().
		On("COUNT(DISTINCT s.Id)", sqlexec.Row{"total": 2}).
		On("MDSubstancePropertyValues] v",
			sqlexec.Row{"SubstanceId": 1, "PropertyId": "10", "Value": "205", "PropertyName": "Tensile", "UnitName": "MPa"}).
		On("WITH PagedRows",
			sqlexec.Row{"SubstanceId": 1, "UniqueKey": "MAT-001", "Density": 7.85, "DensityUnit": "g/cm3"},
			sqlexec.Row{"SubstanceId": 2, "UniqueKey": "MAT-002"}).
		On("BDSubstanceStandards] std_b ON std_n.SubstanceStandardId",
			sqlexec.Row{"SubstanceId": 1, "UniqueKey": "MAT-001", "Density": 7.85, "DensityUnit": "g/cm3"})
}

func TestHandleMaterialList_HTMXRendersGridOnly(t *testing.T) {
	exec := materialExecutor()
	app, env, _ := newTestEnv(t, exec)

	rec := serve(t, app, HandleMaterialList(env), htmxRequest(http.MethodGet, "/materials?q=MAT", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "MAT-001", "MAT-002", "Tensile", "205", "7.85 g/cm3")
	testhelpers.AssertHTMLNotContains(t, body, "<!DOCTYPE html>")
	if n := exec.CallCount("NOT LIKE '%Scrap%'"); n != 0 {
		t.Errorf("expected no option queries for HTMX requests, got %d", n)
	}
}

func TestHandleMaterialList_FullPageLoadsOptions(t *testing.T) {
	exec := materialExecutor()
	app, env, _ := newTestEnv(t, exec)

	rec := serve(t, app, HandleMaterialList(env), httptest.NewRequest(http.MethodGet, "/materials", nil))

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "<!DOCTYPE html>", "MAT-001", `name="q"`, `name="ref"`)
	for _, c := range exec.Calls() {
		if c.Database != "TcPCM_Test" {
			t.Errorf("expected statements against TcPCM_Test, got %q", c.Database)
		}
	}
}

func TestHandlePriceList_InvalidDateRange(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)

	rec := serve(t, app, HandlePriceList(env),
		htmxRequest(http.MethodGet, "/prices?start=2024-05-01&end=2024-04-01", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if parseToast(t, rec)["message"] != "Start date is after end date." {
		t.Error("expected the date-range toast")
	}
}

func TestGridError(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	tr := env.Translator(newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"superseded", services.ErrSuperseded, http.StatusNoContent},
		{"date range", services.ErrInvalidDateRange, http.StatusBadRequest},
		{"other", errors.New("proxy down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, htmxRequest(http.MethodGet, "/materials", nil), rec)
			if err := gridError(e, tr, tt.err); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none")
			}
		})
	}
}

func TestLoadPaged_PageInput(t *testing.T) {
	load := func(page int) (services.GridPage[int], error) {
		p := services.NewPaginator(50, 10)
		p.GoTo(page)
		return services.GridPage[int]{Pager: p, Rows: []int{page}}, nil
	}

	grid, err := loadPaged(url.Values{"page": {"2"}, "page_input": {"4"}}, load)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Rows[0] != 4 {
		t.Errorf("expected page 4 to be loaded, got %d", grid.Rows[0])
	}

	grid, err = loadPaged(url.Values{"page": {"2"}, "page_input": {"abc"}}, load)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Rows[0] != 2 || grid.Pager.CurrentPage() != 2 {
		t.Errorf("expected invalid input to keep page 2, got %d", grid.Pager.CurrentPage())
	}
}

func TestFilterQuery_DropsPagerParams(t *testing.T) {
	q := url.Values{"q": {"steel"}, "page": {"3"}, "page_input": {"3"}, "format": {"pdf"}}
	if got := filterQuery(q); got != "q=steel" {
		t.Errorf("filterQuery = %q", got)
	}
	if got := pdfHref("/prices/export", ""); got != "/prices/export?format=pdf" {
		t.Errorf("pdfHref = %q", got)
	}
	if got := withQuery("/prices", "q=a"); got != "/prices?q=a" {
		t.Errorf("withQuery = %q", got)
	}
}

func TestHandleMaterialExport_Excel(t *testing.T) {
	app, env, _ := newTestEnv(t, materialExecutor())

	rec := serve(t, app, HandleMaterialExport(env), httptest.NewRequest(http.MethodGet, "/materials/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentTypeExcel {
		t.Errorf("unexpected content type %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `filename="Material_Properties_`) || !strings.HasSuffix(cd, `.xlsx"`) {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Error("expected an xlsx (zip) body")
	}
}

func TestHandleMachineExport_NoData(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)

	rec := serve(t, app, HandleMachineExport(env), httptest.NewRequest(http.MethodGet, "/machines/export?q=none&format=pdf", nil))

	testhelpers.AssertRedirect(t, rec, "/machines?q=none")
	if parseToast(t, rec)["message"] != "No data matches the conditions." {
		t.Error("expected the no-data toast")
	}
}

func TestHandlePriceExport_PDF(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("MDMaterialDetails",
			sqlexec.Row{"validFrom": "2024-03-01", "region": "KR", "uniqueKey": "RAW-1", "revisionName": "R2", "name": "Coil",
				"currency": "KRW", "unit": "kg", "price": 1250.5, "scrapPrice": 0})
	app, env, _ := newTestEnv(t, exec)

	rec := serve(t, app, HandlePriceExport(env), htmxRequest(http.MethodGet, "/prices/export?all=true&format=pdf", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentTypePDF {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("expected a PDF body")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("TcPCM AccessLog/2024:01"); got != "TcPCM-AccessLog-2024-01" {
		t.Errorf("sanitizeFilename = %q", got)
	}
}
