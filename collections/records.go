package collections

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrConfigNotFound is returned when no config entry exists for (class, name).
var ErrConfigNotFound = errors.New("config entry not found")

// FindConfigGUID returns the GUID stored for (class, name).
func FindConfigGUID(app core.App, class, name string) (string, error) {
	record, err := app.FindFirstRecordByFilter(
		ConfigsCollection,
		"class = {:class} && name = {:name}",
		map[string]any{"class": class, "name": name},
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrConfigNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find config %s/%s: %w", class, name, err)
	}
	guid := strings.TrimSpace(record.GetString("guid"))
	if guid == "" {
		return "", ErrConfigNotFound
	}
	return guid, nil
}

// Access is one access-history entry.
type Access struct {
	UserID  string
	Action  string
	IP      string
	Device  string
	Success bool
	At      time.Time
}

// RecordAccess appends an entry to the access history. A zero At is now.
func RecordAccess(app core.App, a Access) (*core.Record, error) {
	col, err := app.FindCollectionByNameOrId(AccessHistoryCollection)
	if err != nil {
		return nil, fmt.Errorf("could not find %s collection: %w", AccessHistoryCollection, err)
	}
	if a.At.IsZero() {
		a.At = time.Now()
	}

	record := core.NewRecord(col)
	record.Set("user_id", a.UserID)
	record.Set("action", a.Action)
	record.Set("ip", a.IP)
	record.Set("device", a.Device)
	record.Set("success", a.Success)
	record.Set("accessed_at", a.At.UTC())
	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save access entry: %w", err)
	}
	return record, nil
}

// FindAccessHistory returns the newest entries of userID, at most limit.
func FindAccessHistory(app core.App, userID string, limit int) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		AccessHistoryCollection,
		"user_id = {:userId}",
		"-accessed_at",
		limit,
		0,
		map[string]any{"userId": userID},
	)
}

// FindAccessLog returns every entry accessed within [from, to], newest
// first. A zero bound leaves that side open.
func FindAccessLog(app core.App, from, to time.Time) ([]*core.Record, error) {
	var conds []string
	params := map[string]any{}
	if !from.IsZero() {
		conds = append(conds, "accessed_at >= {:from}")
		params["from"] = from.UTC().Format(types.DefaultDateLayout)
	}
	if !to.IsZero() {
		conds = append(conds, "accessed_at <= {:to}")
		params["to"] = to.UTC().Format(types.DefaultDateLayout)
	}
	filter := "1=1"
	if len(conds) > 0 {
		filter = strings.Join(conds, " && ")
	}
	return app.FindRecordsByFilter(AccessHistoryCollection, filter, "-accessed_at", 0, 0, params)
}

// DeleteAccessHistory removes every entry of userID.
func DeleteAccessHistory(app core.App, userID string) error {
	records, err := app.FindRecordsByFilter(
		AccessHistoryCollection,
		"user_id = {:userId}",
		"", 0, 0,
		map[string]any{"userId": userID},
	)
	if err != nil {
		return fmt.Errorf("find access history of %s: %w", userID, err)
	}
	for _, r := range records {
		if err := app.Delete(r); err != nil {
			return fmt.Errorf("delete access entry %s: %w", r.Id, err)
		}
	}
	return nil
}

// HashPassword returns the bcrypt hash stored in password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
