package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"costconsole/locales"
	"costconsole/services"
	"costconsole/testhelpers"
)

func TestSessionStore_CreatesAndReuses(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	store := NewSessionStore(4, time.Hour, services.CostTreeFetcher{Exec: testhelpers.NewFakeExecutor()}, nil, nil)

	rec := httptest.NewRecorder()
	first := store.Get(newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/cost", nil), rec))
	if first.ID == "" {
		t.Fatal("expected a session id")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || !cookies[0].HttpOnly {
		t.Fatalf("expected one HttpOnly session cookie, got %v", cookies)
	}

	req := withSession(httptest.NewRequest(http.MethodGet, "/cost", nil), rec)
	rec2 := httptest.NewRecorder()
	second := store.Get(newTestRequestEvent(app, req, rec2))
	if second != first {
		t.Error("expected the cookie to resolve the same session")
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a known session")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}
}

func TestSessionStore_UnknownCookieStartsOver(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	store := NewSessionStore(4, time.Hour, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "expired"})
	s := store.Get(newTestRequestEvent(app, req, httptest.NewRecorder()))
	if s.ID == "expired" {
		t.Error("expected a new session id")
	}
}

func TestSessionStore_EvictionForgetsGridTickets(t *testing.T) {
	app, env, _ := newTestEnv(t, materialExecutor())
	env.Sessions = NewSessionStore(1, time.Hour, nil, env.Log, func(id string) {
		env.Data.Seq.ForgetPrefix(gridKeyPrefix(id))
	})

	first := serve(t, app, HandleMaterialList(env), htmxRequest(http.MethodGet, "/materials", nil))
	if env.Data.Seq.Len() != 1 {
		t.Fatalf("expected one grid ticket, got %d", env.Data.Seq.Len())
	}

	// A second browser pushes the first session out of the one-slot store.
	serve(t, app, HandleMaterialList(env), htmxRequest(http.MethodGet, "/materials", nil))
	if env.Data.Seq.Len() != 1 {
		t.Errorf("expected only the live session's ticket, got %d", env.Data.Seq.Len())
	}

	var evictedID string
	for _, c := range first.Result().Cookies() {
		if c.Name == SessionCookie {
			evictedID = c.Value
		}
	}
	if env.Data.Seq.IsLatest(evictedID+":materials", 1) {
		t.Error("expected the evicted session's ticket to be gone")
	}
}

func TestSessionStore_LogsToInjectedLogger(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	store := NewSessionStore(1, time.Hour, nil, logger, nil)

	first := store.Get(newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	store.Get(newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "session evicted" {
		t.Fatalf("expected the eviction on the injected logger, got %v", hook.AllEntries())
	}
	if entry.Data["component"] != "session" || entry.Data["session"] != first.ID {
		t.Errorf("unexpected fields %v", entry.Data)
	}
}

func TestNewEnv_WiresSessionEviction(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig()
	cfg.SessionMax = 1
	env := NewEnv(app, cfg, materialExecutor(), &testhelpers.FakeImporter{}, locales.NewBundle(), nil)

	serve(t, app, HandleMaterialList(env), htmxRequest(http.MethodGet, "/materials", nil))
	serve(t, app, HandleMaterialList(env), htmxRequest(http.MethodGet, "/materials", nil))
	serve(t, app, HandleMaterialList(env), htmxRequest(http.MethodGet, "/materials", nil))
	if n := env.Data.Seq.Len(); n != 1 {
		t.Errorf("expected tickets of evicted sessions to be dropped, got %d", n)
	}
}

func TestSession_LanguageChangeResetsViews(t *testing.T) {
	s := &Session{ID: "s1", fetcher: services.CostTreeFetcher{Exec: testhelpers.NewFakeExecutor()}}

	x1, fresh := s.Explorer(locales.English)
	if !fresh {
		t.Error("expected the first explorer to be fresh")
	}
	x2, fresh := s.Explorer(locales.English)
	if fresh || x2 != x1 {
		t.Error("expected the same explorer for the same language")
	}
	n1, _ := s.Navigator(locales.English)

	x3, fresh := s.Explorer(locales.Korean)
	if !fresh || x3 == x1 {
		t.Error("expected a new explorer after a language change")
	}
	n2, _ := s.Navigator(locales.Korean)
	if n2 == n1 {
		t.Error("expected a new navigator after a language change")
	}
}

func TestSession_Preview(t *testing.T) {
	s := &Session{}
	if s.Preview() != nil {
		t.Fatal("expected no preview")
	}
	p := &services.ImportPreview{Kind: services.KindRegion}
	s.SetPreview(p)
	if s.Preview() != p {
		t.Error("expected stored preview")
	}
	s.SetPreview(nil)
	if s.Preview() != nil {
		t.Error("expected preview cleared")
	}
}
