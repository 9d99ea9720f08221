package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"costconsole/sqlexec"
)

// Role filter values.
const (
	RoleAll   = "All"
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// ConsoleUser is a console account as shown in the user screen.
type ConsoleUser struct {
	ID         string
	UserID     string
	UserName   string
	Department string
	Level      int
	Active     bool
	Created    time.Time
}

func (u ConsoleUser) Role() string {
	if u.Level == 1 {
		return RoleAdmin
	}
	return RoleUser
}

// LevelForRole maps the form's role value to user_level.
func LevelForRole(role string) int {
	if role == RoleAdmin {
		return 1
	}
	return 0
}

// UserFilter narrows the user list. Empty or "All" fields match everything.
type UserFilter struct {
	Text       string
	Department string
	Role       string
}

// FilterUsers keeps users matching f; Text matches id or name, ignoring case.
func FilterUsers(users []ConsoleUser, f UserFilter) []ConsoleUser {
	text := strings.ToLower(strings.TrimSpace(f.Text))
	var out []ConsoleUser
	for _, u := range users {
		if text != "" &&
			!strings.Contains(strings.ToLower(u.UserID), text) &&
			!strings.Contains(strings.ToLower(u.UserName), text) {
			continue
		}
		if f.Department != "" && f.Department != RoleAll && u.Department != f.Department {
			continue
		}
		if f.Role != "" && f.Role != RoleAll && u.Role() != f.Role {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Departments returns the distinct non-empty departments, sorted.
func Departments(users []ConsoleUser) []string {
	var out []string
	for _, u := range users {
		if u.Department != "" && !slices.Contains(out, u.Department) {
			out = append(out, u.Department)
		}
	}
	slices.SortFunc(out, cmp.Compare[string])
	return out
}

var UserExportColumns = []string{"No", "ID", "Name", "Dept", "Role", "Status", "Date"}

// UserExport flattens the user list for the simple user export.
func UserExport(users []ConsoleUser) FlatTable {
	table := FlatTable{Columns: UserExportColumns, Rows: make([]FlatRow, 0, len(users))}
	for i, u := range users {
		status := "Inactive"
		if u.Active {
			status = "Active"
		}
		date := ""
		if !u.Created.IsZero() {
			date = u.Created.Format(time.DateOnly)
		}
		table.Rows = append(table.Rows, FlatRow{
			"No":     strconv.Itoa(i + 1),
			"ID":     u.UserID,
			"Name":   u.UserName,
			"Dept":   u.Department,
			"Role":   u.Role(),
			"Status": status,
			"Date":   date,
		})
	}
	return table
}

// DateRange is an inclusive yyyy-mm-dd range, or every date when All is set.
type DateRange struct {
	Start string
	End   string
	All   bool
}

// Bounds returns the start of Start and the last instant of End in loc.
func (r DateRange) Bounds(loc *time.Location) (from, to time.Time, err error) {
	if r.All {
		return time.Time{}, time.Time{}, nil
	}
	if from, err = time.ParseInLocation(time.DateOnly, r.Start, loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	if to, err = time.ParseInLocation(time.DateOnly, r.End, loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

// Validate checks that both dates parse and are in order.
func (r DateRange) Validate() error {
	_, _, err := r.Bounds(time.UTC)
	return err
}

// Label is "All" or the start date, used in export file names.
func (r DateRange) Label() string {
	if r.All {
		return "All"
	}
	return r.Start
}

// AccessLogEntry is one console access joined with its user.
type AccessLogEntry struct {
	User       ConsoleUser
	AccessedAt time.Time
	IP         string
	Action     string
	Success    bool
}

// AccessLogFilter selects the access-log export.
type AccessLogFilter struct {
	Range    DateRange
	UserName string
	Role     string
}

// Matches reports whether e passes the name and role parts of the filter;
// the date range is applied by the query.
func (f AccessLogFilter) Matches(e AccessLogEntry) bool {
	name := strings.ToLower(strings.TrimSpace(f.UserName))
	if name != "" && !strings.Contains(strings.ToLower(e.User.UserName), name) {
		return false
	}
	if f.Role != "" && f.Role != RoleAll && e.User.Role() != f.Role {
		return false
	}
	return true
}

var AccessLogColumns = []string{"UserID", "UserName", "Department", "Role", "AccessDate", "AccessIP", "AccessType", "Result"}

// AccessLogExport flattens entries, newest first as given.
func AccessLogExport(entries []AccessLogEntry) FlatTable {
	table := FlatTable{Columns: AccessLogColumns, Rows: make([]FlatRow, 0, len(entries))}
	for _, e := range entries {
		result := "Fail"
		if e.Success {
			result = "Success"
		}
		table.Rows = append(table.Rows, FlatRow{
			"UserID":     e.User.UserID,
			"UserName":   e.User.UserName,
			"Department": e.User.Department,
			"Role":       e.User.Role(),
			"AccessDate": e.AccessedAt.Format(time.DateTime),
			"AccessIP":   e.IP,
			"AccessType": e.Action,
			"Result":     result,
		})
	}
	return table
}

var SessionLogColumns = []string{"LogonName", "SessionStart", "SessionEnd", "ComputerName"}

// SessionLogStatement lists the cost system's own application sessions.
func SessionLogStatement(r DateRange) string {
	where := "1=1"
	if !r.All {
		where += " AND SessionStart >= " + nstr(r.Start+" 00:00:00") +
			" AND SessionStart <= " + nstr(r.End+" 23:59:59")
	}
	return `SELECT LogonName,
        FORMAT(SessionStart, 'yyyy-MM-dd HH:mm:ss') AS SessionStart,
        FORMAT(SessionEnd, 'yyyy-MM-dd HH:mm:ss') AS SessionEnd,
        ComputerName
    FROM [dbo].[ApplicationSessionLogs]
    WHERE ` + where + `
    ORDER BY SessionStart DESC`
}

// SessionLogExport converts session-log rows into the export layout.
func SessionLogExport(rows []sqlexec.Row) FlatTable {
	table := FlatTable{Columns: SessionLogColumns, Rows: make([]FlatRow, 0, len(rows))}
	for _, r := range rows {
		row := FlatRow{}
		for _, c := range SessionLogColumns {
			row[c] = r.String(c)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// SessionLogs exports the cost system's session log for r.
func (m *MasterData) SessionLogs(ctx context.Context, r DateRange) (FlatTable, error) {
	if err := r.Validate(); err != nil {
		return FlatTable{}, err
	}
	rows, err := m.query(ctx, SessionLogStatement(r))
	if err != nil {
		return FlatTable{}, err
	}
	if len(rows) == 0 {
		return FlatTable{}, ErrNoData
	}
	return SessionLogExport(rows), nil
}
