// Package locales holds the console's UI label bundle and the mapping from
// UI languages to the locale tags used inside the cost database.
package locales

import (
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Language is a UI language code as stored in the "lang" cookie.
type Language string

const (
	Korean  Language = "ko"
	English Language = "en"

	Default = Korean
)

// Supported lists the UI languages with a message table, in matcher priority.
var Supported = []Language{Korean, English}

var supportedTags = []language.Tag{language.Korean, language.English}

var dbLocales = map[string]string{
	"ko": "ko-KR",
	"en": "en-US",
	"zh": "zh-CN",
	"de": "de-DE",
	"ja": "ja-JP",
}

// DBLocale converts a UI language code to the locale tag used in the
// database's translation columns. Unmapped codes fall back to en-US.
func DBLocale(code string) string {
	if loc, ok := dbLocales[code]; ok {
		return loc
	}
	return "en-US"
}

// Parse matches a cookie value or Accept-Language entry to a supported
// language, falling back to def when nothing matches.
func Parse(code string, def Language) Language {
	if code == "" {
		return def
	}
	tag, err := language.Parse(code)
	if err != nil {
		return def
	}
	_, idx, conf := language.NewMatcher(supportedTags).Match(tag)
	if conf == language.No {
		return def
	}
	return Supported[idx]
}

func (l Language) DBLocale() string {
	return DBLocale(string(l))
}

func (l Language) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Korean
}

func (l Language) String() string {
	return string(l)
}

// NewBundle returns a bundle with every message table registered.
func NewBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.Korean)
	for _, lang := range Supported {
		if err := bundle.AddMessages(lang.Tag(), tableFor(lang)...); err != nil {
			panic(err)
		}
	}
	return bundle
}

// Translator resolves labels for one request's language.
type Translator struct {
	lang      Language
	localizer *i18n.Localizer
}

func NewTranslator(bundle *i18n.Bundle, lang Language) Translator {
	return Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang.String()),
	}
}

func (t Translator) Lang() Language {
	return t.lang
}

// T returns the label for id, or id itself when no table defines it.
func (t Translator) T(id string) string {
	return t.Tf(id, nil)
}

func (t Translator) Tf(id string, data map[string]any) string {
	if t.localizer == nil {
		return id
	}
	// A message found only in the default table comes back with an error.
	msg, _ := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if msg == "" {
		return id
	}
	return msg
}
