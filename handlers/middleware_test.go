package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"costconsole/locales"
)

func TestRequestLanguage(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		accept string
		want   locales.Language
	}{
		{"cookie wins", "en", "ko-KR,ko;q=0.9", locales.English},
		{"accept language", "", "en-US,en;q=0.8,ko;q=0.5", locales.English},
		{"korean header", "", "ko-KR", locales.Korean},
		{"unsupported falls back", "", "fr-FR", locales.Korean},
		{"nothing set", "", "", locales.Korean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			if got := RequestLanguage(req, locales.Korean); got != tt.want {
				t.Errorf("RequestLanguage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTranslator_NotInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetTranslator(req); ok {
		t.Error("expected no translator in a bare request")
	}
}

func TestLanguageMiddleware_StoresTranslator(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/cost", nil)
	req.AddCookie(&http.Cookie{Name: LangCookie, Value: "ko"})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := LanguageMiddleware(env)(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	tr, ok := GetTranslator(e.Request)
	if !ok {
		t.Fatal("expected translator in request context")
	}
	if tr.Lang() != locales.Korean {
		t.Errorf("expected Korean translator, got %q", tr.Lang())
	}
	if env.Translator(e).T("Nav.Cost") != "원가 탐색기" {
		t.Error("expected Env.Translator to reuse the context translator")
	}
}

func TestEnvTranslator_WithoutMiddleware(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	e := newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := env.Translator(e).Lang(); got != locales.English {
		t.Errorf("expected configured default English, got %q", got)
	}
}

func TestHandleLanguage_SetsCookieAndRedirects(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	form := url.Values{"lang": {"ko"}, "redirect": {"/prices?region=KR"}}
	req := httptest.NewRequest(http.MethodPost, "/lang", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(t, app, HandleLanguage(env), req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/prices?region=KR" {
		t.Errorf("expected redirect back, got %q", got)
	}
	var lang *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == LangCookie {
			lang = c
		}
	}
	if lang == nil || lang.Value != "ko" {
		t.Fatalf("expected lang=ko cookie, got %v", lang)
	}
	if parseToast(t, rec)["message"] != "언어가 변경되었습니다." {
		t.Error("expected the confirmation in the new language")
	}
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"/users":              "/users",
		"":                    "/",
		"https://example.com": "/",
		"//example.com":       "/",
		`/\example.com`:       "/",
	}
	for in, want := range tests {
		if got := safeRedirect(in); got != want {
			t.Errorf("safeRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}
