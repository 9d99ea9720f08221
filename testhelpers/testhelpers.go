// Package testhelpers provides utilities for testing the console against a
// temporary PocketBase app and a scripted query proxy.
package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costconsole/collections"
)

// NewTestApp returns a bootstrapped app in t.TempDir() with the console
// collections in place.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestConfig creates a console config entry and returns it.
func CreateTestConfig(t *testing.T, app *pocketbase.PocketBase, class, name, guid string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.ConfigsCollection)
	if err != nil {
		t.Fatalf("failed to find config collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("class", class)
	record.Set("name", name)
	record.Set("guid", guid)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test config: %v", err)
	}

	return record
}

// CreateTestUser creates an active console user and returns it.
func CreateTestUser(t *testing.T, app *pocketbase.PocketBase, userID, userName string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.UsersCollection)
	if err != nil {
		t.Fatalf("failed to find users collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("user_id", userID)
	record.Set("user_name", userName)
	record.Set("department", "Cost Engineering")
	record.Set("user_level", 1)
	record.Set("is_active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}

	return record
}

// CreateTestAccess records one successful access-history entry for userID.
func CreateTestAccess(t *testing.T, app *pocketbase.PocketBase, userID, action string, at time.Time) *core.Record {
	t.Helper()

	record, err := collections.RecordAccess(app, collections.Access{
		UserID:  userID,
		Action:  action,
		IP:      "10.0.0.1",
		Device:  "test",
		Success: true,
		At:      at,
	})
	if err != nil {
		t.Fatalf("failed to save test access entry: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s", frag, truncate(body, 500))
		}
	}
}

// AssertRedirect fails unless rec is a 302 to location.
func AssertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 to %s, got %d", location, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
