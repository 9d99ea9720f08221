package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"costconsole/config"
	"costconsole/locales"
	"costconsole/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		Databases:       config.DatabaseOptions{PCM: "TcPCM_Test", Console: "TcPCM_Console"},
		PageSize:        15,
		SessionTTL:      time.Hour,
		SessionMax:      16,
		DefaultLanguage: "en",
		MaxUploadSize:   1 << 20,
	}
}

// newTestEnv wires an Env against a temporary app, a scripted executor and
// a recording importer.
func newTestEnv(t *testing.T, exec *testhelpers.FakeExecutor) (*pocketbase.PocketBase, *Env, *testhelpers.FakeImporter) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	if exec == nil {
		exec = testhelpers.NewFakeExecutor()
	}
	importer := &testhelpers.FakeImporter{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	env := NewEnv(app, testConfig(), exec, importer, locales.NewBundle(), log)
	return app, env, importer
}

// serve runs handler for req and returns the recorded response.
func serve(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func htmxRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("HX-Request", "true")
	return req
}

// withSession copies the session cookie of rec onto req.
func withSession(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			req.AddCookie(c)
		}
	}
	return req
}
