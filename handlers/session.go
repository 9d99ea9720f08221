package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"costconsole/locales"
	"costconsole/services"
)

const SessionCookie = "console_session"

// Session is the per-browser view state: the cost explorer, the folder
// navigator and a pending import preview.
type Session struct {
	ID string

	fetcher services.ChildFetcher
	log     logrus.FieldLogger

	mu        sync.Mutex
	lang      locales.Language
	explorer  *services.Explorer
	navigator *services.Navigator
	preview   *services.ImportPreview
}

// views returns the explorer and navigator for lang. Names are parsed in the
// session language, so a language change starts both views afresh.
func (s *Session) views(lang locales.Language) (*services.Explorer, *services.Navigator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := false
	if s.explorer == nil || s.lang != lang {
		parser := services.NewRecordParser(lang.DBLocale())
		s.explorer = services.NewExplorer(s.fetcher, parser, s.log)
		s.navigator = services.NewNavigator(s.fetcher, parser, s.log)
		s.lang = lang
		fresh = true
	}
	return s.explorer, s.navigator, fresh
}

func (s *Session) Explorer(lang locales.Language) (*services.Explorer, bool) {
	x, _, fresh := s.views(lang)
	return x, fresh
}

func (s *Session) Navigator(lang locales.Language) (*services.Navigator, bool) {
	_, n, fresh := s.views(lang)
	return n, fresh
}

func (s *Session) Preview() *services.ImportPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *Session) SetPreview(p *services.ImportPreview) {
	s.mu.Lock()
	s.preview = p
	s.mu.Unlock()
}

// SessionStore keeps sessions in an expiring LRU keyed by the session cookie.
type SessionStore struct {
	cache   *expirable.LRU[string, *Session]
	ttl     time.Duration
	fetcher services.ChildFetcher
	log     logrus.FieldLogger
}

// NewSessionStore keeps up to size sessions for ttl each. onEvict, when not
// nil, receives the id of every session that expires or is pushed out.
func NewSessionStore(size int, ttl time.Duration, fetcher services.ChildFetcher, log logrus.FieldLogger, onEvict func(id string)) *SessionStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "session")
	evicted := func(id string, _ *Session) {
		log.WithField("session", id).Debug("session evicted")
		if onEvict != nil {
			onEvict(id)
		}
	}
	return &SessionStore{
		cache:   expirable.NewLRU[string, *Session](size, evicted, ttl),
		ttl:     ttl,
		fetcher: fetcher,
		log:     log,
	}
}

// Get returns the request's session, creating one and setting the cookie
// when the cookie is missing or its session expired.
func (st *SessionStore) Get(e *core.RequestEvent) *Session {
	if c, err := e.Request.Cookie(SessionCookie); err == nil && c.Value != "" {
		if s, ok := st.cache.Get(c.Value); ok {
			return s
		}
	}

	s := &Session{ID: uuid.NewString(), fetcher: st.fetcher, log: st.log}
	st.cache.Add(s.ID, s)
	http.SetCookie(e.Response, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func (st *SessionStore) Len() int {
	return st.cache.Len()
}
