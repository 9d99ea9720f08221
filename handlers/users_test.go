package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"costconsole/collections"
	"costconsole/sqlexec"
	"costconsole/testhelpers"
)

func TestHandleUserList_Filters(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")
	testhelpers.CreateTestUser(t, app, "lee", "Lee Jiwon")

	rec := serve(t, app, HandleUserList(env), httptest.NewRequest(http.MethodGet, "/users", nil))
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!DOCTYPE html>", "Kim Minsu", "Lee Jiwon", "Cost Engineering")

	rec = serve(t, app, HandleUserList(env), htmxRequest(http.MethodGet, "/users?q=jiwon", nil))
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Lee Jiwon")
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "Kim Minsu")
}

func TestHandleUserSave_CreateHashesPassword(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)

	form := url.Values{
		"user_id": {"park"}, "user_name": {"Park Seoyeon"}, "department": {"Purchasing"},
		"password": {"s3cret"}, "role": {"Admin"}, "is_active": {"true"},
	}
	rec := serve(t, app, HandleUserSave(env), formRequest(http.MethodPost, "/users", form))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	record, err := app.FindFirstRecordByFilter(collections.UsersCollection, "user_id = 'park'")
	if err != nil {
		t.Fatalf("expected saved user: %v", err)
	}
	if record.GetInt("user_level") != 1 || !record.GetBool("is_active") {
		t.Errorf("unexpected level/active: %d %v", record.GetInt("user_level"), record.GetBool("is_active"))
	}
	if !collections.CheckPassword(record.GetString("password_hash"), "s3cret") {
		t.Error("expected a bcrypt hash of the password")
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Park Seoyeon", `id="user-form" hx-swap-oob="true"`)
}

func TestHandleUserSave_DuplicateUserID(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")

	form := url.Values{"user_id": {"kim"}, "user_name": {"Another Kim"}, "role": {"User"}}
	rec := serve(t, app, HandleUserSave(env), formRequest(http.MethodPost, "/users", form))

	if rec.Header().Get("HX-Retarget") != "#user-form" {
		t.Errorf("expected the form to be re-rendered, got %q", rec.Header().Get("HX-Retarget"))
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "User ID is already taken.")
	records, _ := app.FindAllRecords(collections.UsersCollection)
	if len(records) != 1 {
		t.Errorf("expected 1 user, got %d", len(records))
	}
}

func TestHandleUserSave_RequiredFields(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)

	form := url.Values{"user_id": {""}, "user_name": {""}, "role": {"Root"}}
	rec := serve(t, app, HandleUserSave(env), formRequest(http.MethodPost, "/users", form))

	if rec.Header().Get("HX-Retarget") != "#user-form" {
		t.Error("expected HX-Retarget #user-form")
	}
	if parseToast(t, rec)["message"] != "User ID and name are required." {
		t.Error("expected the required-fields toast")
	}
}

func TestHandleUserSave_UpdateKeepsIDAndPassword(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	user := testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")
	hash, _ := collections.HashPassword("old")
	user.Set("password_hash", hash)
	if err := app.Save(user); err != nil {
		t.Fatal(err)
	}

	form := url.Values{"user_id": {"renamed"}, "user_name": {"Kim M."}, "role": {"User"}}
	req := formRequest(http.MethodPost, "/users/"+user.Id, form)
	req.SetPathValue("id", user.Id)
	serve(t, app, HandleUserSave(env), req)

	updated, err := app.FindRecordById(collections.UsersCollection, user.Id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.GetString("user_id") != "kim" {
		t.Errorf("expected user id to stay fixed, got %q", updated.GetString("user_id"))
	}
	if updated.GetString("user_name") != "Kim M." {
		t.Errorf("expected updated name, got %q", updated.GetString("user_name"))
	}
	if !collections.CheckPassword(updated.GetString("password_hash"), "old") {
		t.Error("expected an empty password to keep the old hash")
	}
}

func TestHandleUserDelete(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	user := testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")
	testhelpers.CreateTestAccess(t, app, "kim", "login", time.Now())
	testhelpers.CreateTestAccess(t, app, "kim", "logout", time.Now())

	req := htmxRequest(http.MethodDelete, "/users/"+user.Id, nil)
	req.SetPathValue("id", user.Id)
	rec := serve(t, app, HandleUserDelete(env), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected confirmation to be required, got %d", rec.Code)
	}

	req = htmxRequest(http.MethodDelete, "/users/"+user.Id+"?confirm=true", nil)
	req.SetPathValue("id", user.Id)
	rec = serve(t, app, HandleUserDelete(env), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, err := app.FindRecordById(collections.UsersCollection, user.Id); err == nil {
		t.Error("expected the user to be deleted")
	}
	history, _ := collections.FindAccessHistory(app, "kim", 10)
	if len(history) != 0 {
		t.Errorf("expected access history to be deleted, got %d entries", len(history))
	}
}

func TestHandleUserHistory(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	user := testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")
	testhelpers.CreateTestAccess(t, app, "kim", "export", time.Now())

	req := htmxRequest(http.MethodGet, "/users/"+user.Id+"/history", nil)
	req.SetPathValue("id", user.Id)
	rec := serve(t, app, HandleUserHistory(env), req)
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Kim Minsu", "export", "10.0.0.1")
}

func TestHandleUserExport(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)

	rec := serve(t, app, HandleUserExport(env), httptest.NewRequest(http.MethodGet, "/users/export", nil))
	testhelpers.AssertRedirect(t, rec, "/users")

	testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")
	rec = serve(t, app, HandleUserExport(env), httptest.NewRequest(http.MethodGet, "/users/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Users_`) {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
}

func TestHandleAccessLogExport_Console(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)
	testhelpers.CreateTestUser(t, app, "kim", "Kim Minsu")
	testhelpers.CreateTestAccess(t, app, "kim", "login", time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))

	rec := serve(t, app, HandleAccessLogExport(env),
		httptest.NewRequest(http.MethodGet, "/users/access-log/export?target=console&all=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Web_AccessLog_All_") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	rec = serve(t, app, HandleAccessLogExport(env),
		httptest.NewRequest(http.MethodGet, "/users/access-log/export?target=console&start=2023-01-01&end=2023-01-31", nil))
	if rec.Code != http.StatusFound {
		t.Errorf("expected no-data redirect, got %d", rec.Code)
	}
}

func TestHandleAccessLogExport_PCM(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("ApplicationSessionLogs", sqlexec.Row{
			"LogonName": "kim", "SessionStart": "2024-03-05 09:00:00", "SessionEnd": "2024-03-05 18:00:00", "ComputerName": "PC-01",
		})
	app, env, _ := newTestEnv(t, exec)

	rec := serve(t, app, HandleAccessLogExport(env),
		httptest.NewRequest(http.MethodGet, "/users/access-log/export?target=pcm&start=2024-03-01&end=2024-03-31", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "TcPCM_AccessLog_2024-03-01_") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if exec.CallCount("SessionStart >= N'2024-03-01 00:00:00'") != 1 {
		t.Error("expected the date range in the session-log statement")
	}
}

func TestHandleAccessLogExport_BadRange(t *testing.T) {
	app, env, _ := newTestEnv(t, nil)

	rec := serve(t, app, HandleAccessLogExport(env),
		htmxRequest(http.MethodGet, "/users/access-log/export?start=2024-03-31&end=2024-03-01", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if parseToast(t, rec)["message"] != "Start date is after end date." {
		t.Error("expected the date-range toast")
	}
}
