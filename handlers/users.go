package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"costconsole/collections"
	"costconsole/services"
	"costconsole/templates"
)

// historyLimit is the number of access entries shown per user.
const historyLimit = 100

func userFromRecord(r *core.Record) services.ConsoleUser {
	return services.ConsoleUser{
		ID:         r.Id,
		UserID:     r.GetString("user_id"),
		UserName:   r.GetString("user_name"),
		Department: r.GetString("department"),
		Level:      r.GetInt("user_level"),
		Active:     r.GetBool("is_active"),
		Created:    r.GetDateTime("created").Time(),
	}
}

func loadUsers(env *Env) []services.ConsoleUser {
	records, err := env.App.FindRecordsByFilter(collections.UsersCollection, "1=1", "user_id", 0, 0, nil)
	if err != nil {
		env.logger("user_list").WithError(err).Warn("could not query users")
		return nil
	}
	out := make([]services.ConsoleUser, 0, len(records))
	for _, r := range records {
		out = append(out, userFromRecord(r))
	}
	return out
}

func userFilter(e *core.RequestEvent) services.UserFilter {
	q := e.Request.URL.Query()
	return services.UserFilter{
		Text:       strings.TrimSpace(q.Get("q")),
		Department: q.Get("dept"),
		Role:       q.Get("role"),
	}
}

func HandleUserList(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		users := loadUsers(env)
		f := userFilter(e)
		data := templates.UserData{
			T:           t,
			Users:       services.FilterUsers(users, f),
			Departments: services.Departments(users),
			Filter:      f,
		}
		return renderScreen(e, t, "User.Title", templates.UserScreen(data), templates.UserList(data))
	}
}

func HandleUserEdit(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		record, err := env.App.FindRecordById(collections.UsersCollection, e.Request.PathValue("id"))
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		}
		u := userFromRecord(record)
		return renderPartial(e, templates.UserFormView(t, templates.UserForm{
			ID:         u.ID,
			UserID:     u.UserID,
			UserName:   u.UserName,
			Department: u.Department,
			Role:       u.Role(),
			Active:     u.Active,
		}))
	}
}

// HandleUserHistory shows the newest access entries of one user.
func HandleUserHistory(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		record, err := env.App.FindRecordById(collections.UsersCollection, e.Request.PathValue("id"))
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		}
		entries, err := collections.FindAccessHistory(env.App, record.GetString("user_id"), historyLimit)
		if err != nil {
			env.logger("user_history").WithError(err).Warn("could not query access history")
		}
		rows := make([]templates.AccessRow, 0, len(entries))
		for _, r := range entries {
			rows = append(rows, templates.AccessRow{
				At:      r.GetDateTime("accessed_at").Time().Local(),
				IP:      r.GetString("ip"),
				Action:  r.GetString("action"),
				Success: r.GetBool("success"),
			})
		}
		return renderPartial(e, templates.UserHistory(t, record.GetString("user_name"), rows))
	}
}

// userInput is a submitted user form.
type userInput struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Department string `json:"department"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Active     bool   `json:"is_active"`
}

func userInputFrom(e *core.RequestEvent) userInput {
	return userInput{
		UserID:     strings.TrimSpace(e.Request.FormValue("user_id")),
		UserName:   strings.TrimSpace(e.Request.FormValue("user_name")),
		Department: strings.TrimSpace(e.Request.FormValue("department")),
		Password:   e.Request.FormValue("password"),
		Role:       e.Request.FormValue("role"),
		Active:     e.Request.FormValue("is_active") == "true",
	}
}

func (u userInput) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.UserID, validation.Required, validation.Length(1, 50)),
		validation.Field(&u.UserName, validation.Required, validation.Length(1, 100)),
		validation.Field(&u.Role, validation.In(services.RoleAdmin, services.RoleUser)),
	)
}

// HandleUserSave creates a user, or updates the one named by {id}. The
// user id is fixed after creation; an empty password keeps the old one.
func HandleUserSave(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		log := env.logger("user_save")
		id := e.Request.PathValue("id")
		in := userInputFrom(e)

		var record *core.Record
		if id != "" {
			var err error
			record, err = env.App.FindRecordById(collections.UsersCollection, id)
			if err != nil {
				return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
			}
			in.UserID = record.GetString("user_id")
		}

		form := templates.UserForm{
			ID:         id,
			UserID:     in.UserID,
			UserName:   in.UserName,
			Department: in.Department,
			Role:       in.Role,
			Active:     in.Active,
		}
		invalid := func(message string, errs map[string]string) error {
			Notify(e, Outcome{Kind: OutcomeError, Message: message})
			e.Response.Header().Set("HX-Retarget", "#user-form")
			e.Response.Header().Set("HX-Reswap", "innerHTML")
			form.Errors = errs
			return renderPartial(e, templates.UserFormView(t, form))
		}

		if err := in.Validate(); err != nil {
			return invalid(t.T("Msg.RequiredIDName"), fieldErrors(t, err, "Msg.RequiredIDName"))
		}

		if record == nil {
			existing, _ := env.App.FindFirstRecordByFilter(collections.UsersCollection,
				"user_id = {:uid}", map[string]any{"uid": in.UserID})
			if existing != nil {
				return invalid(t.T("Msg.DuplicateUserID"), map[string]string{"user_id": t.T("Msg.DuplicateUserID")})
			}
			col, err := env.App.FindCollectionByNameOrId(collections.UsersCollection)
			if err != nil {
				log.WithError(err).Error("users collection missing")
				return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.SaveFailed"))
			}
			record = core.NewRecord(col)
			record.Set("user_id", in.UserID)
		}

		record.Set("user_name", in.UserName)
		record.Set("department", in.Department)
		record.Set("user_level", services.LevelForRole(in.Role))
		record.Set("is_active", in.Active)
		if in.Password != "" {
			hash, err := collections.HashPassword(in.Password)
			if err != nil {
				log.WithError(err).Error("could not hash password")
				return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.SaveFailed"))
			}
			record.Set("password_hash", hash)
		}

		if err := env.App.Save(record); err != nil {
			log.WithError(err).WithField("user_id", in.UserID).Error("could not save user")
			return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.SaveFailed"))
		}

		Notify(e, Outcome{Kind: OutcomeSuccess, Message: t.T("Msg.Saved")})
		return renderPartial(e, templates.UserSaved(templates.UserData{T: t, Users: loadUsers(env)}))
	}
}

// HandleUserDelete removes a user together with its access history. The
// request must carry confirm=true.
func HandleUserDelete(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		if e.Request.URL.Query().Get("confirm") != "true" {
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.ConfirmDelete"))
		}

		record, err := env.App.FindRecordById(collections.UsersCollection, e.Request.PathValue("id"))
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		}

		err = env.App.RunInTransaction(func(txApp core.App) error {
			if err := collections.DeleteAccessHistory(txApp, record.GetString("user_id")); err != nil {
				return err
			}
			return txApp.Delete(record)
		})
		if err != nil {
			env.logger("user_delete").WithError(err).WithField("user_id", record.GetString("user_id")).Error("could not delete user")
			return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.DeleteFailed"))
		}

		Notify(e, Outcome{Kind: OutcomeSuccess, Message: t.T("Msg.Deleted")})
		return renderPartial(e, templates.UserList(templates.UserData{T: t, Users: loadUsers(env)}))
	}
}

func HandleUserExport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		return env.serveExport(e, t, exportJob{
			Title:  "Users",
			Back:   "/users",
			Format: FormatExcel,
			Build: func(ctx context.Context) (services.FlatTable, error) {
				users := loadUsers(env)
				if len(users) == 0 {
					return services.FlatTable{}, services.ErrNoData
				}
				return services.UserExport(users), nil
			},
		})
	}
}

// Access-log export targets.
const (
	LogTargetConsole = "console"
	LogTargetPCM     = "pcm"
)

// HandleAccessLogExport exports either the console's own access history or
// the cost system's application sessions for a date range.
func HandleAccessLogExport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		q := e.Request.URL.Query()
		r := services.DateRange{Start: q.Get("start"), End: q.Get("end"), All: q.Get("all") == "true"}
		filter := services.AccessLogFilter{Range: r, UserName: q.Get("name"), Role: q.Get("role")}

		if err := r.Validate(); err != nil {
			return failBack(e, http.StatusBadRequest, "/users", t.T("Msg.DateRange"))
		}

		if q.Get("target") == LogTargetPCM {
			return env.serveExport(e, t, exportJob{
				Title:  "TcPCM_AccessLog_" + r.Label(),
				Back:   "/users",
				Format: FormatExcel,
				Build: func(ctx context.Context) (services.FlatTable, error) {
					return env.Data.SessionLogs(ctx, r)
				},
			})
		}
		return env.serveExport(e, t, exportJob{
			Title:  "Web_AccessLog_" + r.Label(),
			Back:   "/users",
			Format: FormatExcel,
			Build: func(ctx context.Context) (services.FlatTable, error) {
				return consoleAccessLog(env, filter)
			},
		})
	}
}

func consoleAccessLog(env *Env, f services.AccessLogFilter) (services.FlatTable, error) {
	from, to, err := f.Range.Bounds(time.Local)
	if err != nil {
		return services.FlatTable{}, err
	}
	records, err := collections.FindAccessLog(env.App, from, to)
	if err != nil {
		return services.FlatTable{}, err
	}

	users := make(map[string]services.ConsoleUser)
	for _, u := range loadUsers(env) {
		users[u.UserID] = u
	}

	var entries []services.AccessLogEntry
	for _, r := range records {
		userID := r.GetString("user_id")
		u, ok := users[userID]
		if !ok {
			u = services.ConsoleUser{UserID: userID}
		}
		entry := services.AccessLogEntry{
			User:       u,
			AccessedAt: r.GetDateTime("accessed_at").Time().Local(),
			IP:         r.GetString("ip"),
			Action:     r.GetString("action"),
			Success:    r.GetBool("success"),
		}
		if f.Matches(entry) {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return services.FlatTable{}, services.ErrNoData
	}
	return services.AccessLogExport(entries), nil
}
