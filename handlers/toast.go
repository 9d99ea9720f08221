package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"
)

// OutcomeKind is the toast style of a user-facing result.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeError   OutcomeKind = "error"
	OutcomeInfo    OutcomeKind = "info"
	OutcomeWarning OutcomeKind = "warning"
)

// Outcome is a user-visible result shown as a toast. Handlers never block the
// page with alerts.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Notify shows o on the client.
func Notify(e *core.RequestEvent, o Outcome) {
	SetToast(e, string(o.Kind), o.Message)
}

// flashCookie carries the last toast across a full-page redirect, where the
// HX-Trigger header never reaches the client.
const flashCookie = "flash_toast"

// SetToast queues a showToast event for the client. Other events already in
// HX-Trigger (plantsChanged, ...) are kept; a header that is not a JSON object
// is replaced.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	log := logrus.WithField("component", "toast")
	payload := map[string]string{"message": message, "type": toastType}

	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			log.WithError(err).Warn("replacing HX-Trigger that is not a JSON object")
			events = map[string]any{}
		}
	}
	events["showToast"] = payload

	header, err := json.Marshal(events)
	if err != nil {
		log.WithError(err).Error("could not encode HX-Trigger")
		return
	}
	e.Response.Header().Set("HX-Trigger", string(header))

	flash, err := json.Marshal(payload)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(string(flash)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read by the toast script
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast answers with statusCode and an error toast. HX-Reswap none keeps
// the body out of the page; the toast still fires.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, string(OutcomeError), message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// failBack reports a failed download. HTMX callers get an error toast; plain
// links are sent back to the list page with the toast in the flash cookie.
func failBack(e *core.RequestEvent, statusCode int, back, message string) error {
	if isHTMX(e) {
		return ErrorToast(e, statusCode, message)
	}
	SetToast(e, string(OutcomeError), message)
	return e.Redirect(http.StatusFound, back)
}
