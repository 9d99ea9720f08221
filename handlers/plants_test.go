package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"

	"costconsole/services"
	"costconsole/sqlexec"
	"costconsole/testhelpers"
)

func plantExecutor() *testhelpers.FakeExecutor {
	return testhelpers.NewFakeExecutor().
		On("AS region", sqlexec.Row{"id": 7, "uniqueKey": "P-01", "nameKo": "울산공장", "nameEn": "Ulsan", "region": "KR"}).
		On("AS nameKo",
			sqlexec.Row{"id": 1, "uniqueKey": "KR", "nameKo": "한국", "nameEn": "Korea"},
			sqlexec.Row{"id": 2, "uniqueKey": "CN", "nameKo": "중국", "nameEn": "China"}).
		On("SELECT UniqueKey FROM [dbo].[BDRegions]", sqlexec.Row{"UniqueKey": "KR"}, sqlexec.Row{"UniqueKey": "CN"})
}

func uploadRequest(t *testing.T, tab, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("tab", tab); err != nil {
		t.Fatal(err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	w.Close()

	req := htmxRequest(http.MethodPost, "/plants/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func commitRequest(confirm bool) *http.Request {
	form := url.Values{}
	if confirm {
		form.Set("confirm", "true")
	}
	req := htmxRequest(http.MethodPost, "/plants/import/commit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandlePlantList_Tabs(t *testing.T) {
	app, env, _ := newTestEnv(t, plantExecutor())

	rec := serve(t, app, HandlePlantList(env), httptest.NewRequest(http.MethodGet, "/plants", nil))
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!DOCTYPE html>", "Korea", "China")

	rec = serve(t, app, HandlePlantList(env), htmxRequest(http.MethodGet, "/plants?tab=plant", nil))
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "P-01", "Ulsan")
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "China")

	rec = serve(t, app, HandlePlantList(env), htmxRequest(http.MethodGet, "/plants?tab=region&q=chi", nil))
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "China")
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "Korea")
}

func TestHandlePlantExport(t *testing.T) {
	app, env, _ := newTestEnv(t, plantExecutor())

	rec := serve(t, app, HandlePlantExport(env), httptest.NewRequest(http.MethodGet, "/plants/export?tab=plant", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Plant_List_") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
}

func TestHandlePlantTemplate(t *testing.T) {
	app, env, _ := newTestEnv(t, plantExecutor())

	rec := serve(t, app, HandlePlantTemplate(env), httptest.NewRequest(http.MethodGet, "/plants/template?tab=plant", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Plant_Template.xlsx"`) {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
}

func TestHandlePlantImport_MissingFile(t *testing.T) {
	app, env, _ := newTestEnv(t, plantExecutor())
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("tab", "region")
	w.Close()
	req := htmxRequest(http.MethodPost, "/plants/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := serve(t, app, HandlePlantImport(env), req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if parseToast(t, rec)["message"] != "Please select a file." {
		t.Error("expected the file-required toast")
	}
}

// importPreview uploads csv and returns the response carrying the session.
func importPreview(t *testing.T, app *pocketbase.PocketBase, env *Env, tab, csv string) *httptest.ResponseRecorder {
	t.Helper()
	rec := serve(t, app, HandlePlantImport(env), uploadRequest(t, tab, tab+"s.csv", csv))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected preview, got %d: %s", rec.Code, rec.Body.String())
	}
	return rec
}

func TestHandlePlantImport_CommitRegions(t *testing.T) {
	app, env, importer := newTestEnv(t, plantExecutor())
	testhelpers.CreateTestConfig(t, app, services.ImportConfigClass, string(services.KindRegion), "0b6f5b9c-1f4e-4c1b-9d4c-6a2f0f1e2d3c")

	preview := importPreview(t, app, env, "region", "Key,Name (KR),Name (EN)\nJP,일본,Japan\n")
	testhelpers.AssertHTMLContains(t, preview.Body.String(), "JP", "Japan", `hx-post="/plants/import/commit"`)

	rec := serve(t, app, HandlePlantImportCommit(env), withSession(commitRequest(false), preview))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	calls := importer.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one import call, got %d", len(calls))
	}
	if calls[0].GUID != "0b6f5b9c-1f4e-4c1b-9d4c-6a2f0f1e2d3c" || len(calls[0].Data) != 1 {
		t.Errorf("unexpected import call %+v", calls[0])
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), `"plantsChanged":true`) {
		t.Errorf("expected plantsChanged trigger, got %q", rec.Header().Get("HX-Trigger"))
	}
	if parseToast(t, rec)["message"] != "1 rows imported." {
		t.Error("expected the import-done toast")
	}

	rec = serve(t, app, HandlePlantImportCommit(env), withSession(commitRequest(false), preview))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected the preview to be cleared after commit, got %d", rec.Code)
	}
}

func TestHandlePlantImport_UnknownRegionNeedsConfirmation(t *testing.T) {
	app, env, importer := newTestEnv(t, plantExecutor())
	testhelpers.CreateTestConfig(t, app, services.ImportConfigClass, string(services.KindPlant), "4c1b9d4c-0b6f-5b9c-1f4e-6a2f0f1e2d3c")

	preview := importPreview(t, app, env, "plant", "Key,NameKo,NameEn,Region\nP-02,상해공장,Shanghai,CN\nP-03,기타,Other,ZZ\n")
	testhelpers.AssertHTMLContains(t, preview.Body.String(), `class="invalid"`, `name="confirm"`)

	rec := serve(t, app, HandlePlantImportCommit(env), withSession(commitRequest(false), preview))
	if len(importer.Calls()) != 0 {
		t.Fatal("expected nothing sent without confirmation")
	}
	if parseToast(t, rec)["type"] != "warning" {
		t.Error("expected a warning toast")
	}

	serve(t, app, HandlePlantImportCommit(env), withSession(commitRequest(true), preview))
	if calls := importer.Calls(); len(calls) != 1 || len(calls[0].Data) != 2 {
		t.Errorf("expected both rows sent after confirmation, got %+v", calls)
	}
}

func TestHandlePlantImportCommit_ConfigMissing(t *testing.T) {
	app, env, importer := newTestEnv(t, plantExecutor())
	preview := importPreview(t, app, env, "region", "Key,Name (KR),Name (EN)\nJP,일본,Japan\n")

	rec := serve(t, app, HandlePlantImportCommit(env), withSession(commitRequest(false), preview))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if got := parseToast(t, rec)["message"]; got != "Configuration GUID not found (Category / Region)." {
		t.Errorf("unexpected toast %q", got)
	}
	if len(importer.Calls()) != 0 {
		t.Error("expected no import call")
	}
}

func TestHandlePlantImportCommit_ProxyFailure(t *testing.T) {
	app, env, importer := newTestEnv(t, plantExecutor())
	importer.Err = errors.New("502 from proxy")
	testhelpers.CreateTestConfig(t, app, services.ImportConfigClass, string(services.KindRegion), "0b6f5b9c-1f4e-4c1b-9d4c-6a2f0f1e2d3c")
	preview := importPreview(t, app, env, "region", "Key,Name (KR),Name (EN)\nJP,일본,Japan\n")

	rec := serve(t, app, HandlePlantImportCommit(env), withSession(commitRequest(false), preview))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if env.Sessions.Get(newTestRequestEvent(app, withSession(httptest.NewRequest(http.MethodGet, "/", nil), preview), httptest.NewRecorder())).Preview() == nil {
		t.Error("expected the preview to be kept after a failed import")
	}
}
