package collections

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/sirupsen/logrus"
)

// MigrateConfigGUIDs rewrites stored config GUIDs to the canonical lowercase
// hyphenated form ("{ABC...}" and urn:uuid: forms included). Entries that do
// not parse are logged and left alone. Safe to call on every startup.
func MigrateConfigGUIDs(app *pocketbase.PocketBase) error {
	log := logrus.WithField("component", "migrate")

	records, err := app.FindAllRecords(ConfigsCollection)
	if err != nil {
		return fmt.Errorf("migrate: could not query %s: %w", ConfigsCollection, err)
	}

	updated := 0
	for _, r := range records {
		raw := r.GetString("guid")
		parsed, err := uuid.Parse(raw)
		if err != nil {
			log.WithField("config", r.Id).Warnf("migrate: guid %q is not a UUID", raw)
			continue
		}
		if parsed.String() == raw {
			continue
		}
		r.Set("guid", parsed.String())
		if err := app.Save(r); err != nil {
			log.WithError(err).WithField("config", r.Id).Error("migrate: failed to normalise guid")
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Infof("migrate: normalised %d config guid(s)", updated)
	}
	return nil
}
