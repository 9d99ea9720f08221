package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/text/language"

	"costconsole/locales"
)

type contextKey string

const TranslatorKey contextKey = "translator"

// LangCookie holds the UI language chosen with the language switch.
const LangCookie = "lang"

// GetTranslator extracts the request translator stored by LanguageMiddleware.
func GetTranslator(r *http.Request) (locales.Translator, bool) {
	t, ok := r.Context().Value(TranslatorKey).(locales.Translator)
	return t, ok
}

// RequestLanguage reads the "lang" cookie, then the first Accept-Language
// entry, falling back to def.
func RequestLanguage(r *http.Request, def locales.Language) locales.Language {
	if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
		return locales.Parse(c.Value, def)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			return locales.Parse(tags[0].String(), def)
		}
	}
	return def
}

func (env *Env) defaultLanguage() locales.Language {
	if env.Config == nil {
		return locales.Default
	}
	return locales.Parse(env.Config.DefaultLanguage, locales.Default)
}

// Translator returns the request's translator, resolving the language when
// the middleware did not run.
func (env *Env) Translator(e *core.RequestEvent) locales.Translator {
	if t, ok := GetTranslator(e.Request); ok {
		return t
	}
	return locales.NewTranslator(env.Bundle, RequestLanguage(e.Request, env.defaultLanguage()))
}

// LanguageMiddleware resolves the UI language once per request and stores
// its translator in the request context.
func LanguageMiddleware(env *Env) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := locales.NewTranslator(env.Bundle, RequestLanguage(e.Request, env.defaultLanguage()))
		ctx := context.WithValue(e.Request.Context(), TranslatorKey, t)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

// HandleLanguage stores the chosen UI language and returns to the page the
// switch was used on.
func HandleLanguage(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		lang := locales.Parse(e.Request.FormValue("lang"), env.defaultLanguage())
		http.SetCookie(e.Response, &http.Cookie{
			Name:     LangCookie,
			Value:    lang.String(),
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			SameSite: http.SameSiteLaxMode,
		})

		t := locales.NewTranslator(env.Bundle, lang)
		SetToast(e, string(OutcomeInfo), t.T("Msg.LanguageChanged"))
		return e.Redirect(http.StatusFound, safeRedirect(e.Request.FormValue("redirect")))
	}
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
