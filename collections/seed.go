package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"
)

// SeedConfig is an import configuration created on first start.
type SeedConfig struct {
	Class string
	Name  string
	GUID  string
}

// Seed creates the admin console user and the given config entries when
// their collections are empty. It is safe to call on every startup.
func Seed(app *pocketbase.PocketBase, adminPassword string, configs []SeedConfig) error {
	log := logrus.WithField("component", "seed")

	usersCol, err := app.FindCollectionByNameOrId(UsersCollection)
	if err != nil {
		return fmt.Errorf("seed: could not find %s collection: %w", UsersCollection, err)
	}
	users, err := app.CountRecords(usersCol)
	if err != nil {
		return fmt.Errorf("seed: could not count users: %w", err)
	}
	if users == 0 {
		admin := core.NewRecord(usersCol)
		admin.Set("user_id", "admin")
		admin.Set("user_name", "Administrator")
		admin.Set("user_level", 1)
		admin.Set("is_active", true)
		if adminPassword != "" {
			hash, err := HashPassword(adminPassword)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			admin.Set("password_hash", hash)
		}
		if err := app.Save(admin); err != nil {
			return fmt.Errorf("seed: could not create admin user: %w", err)
		}
		log.Info("seed: created admin user")
	}

	configsCol, err := app.FindCollectionByNameOrId(ConfigsCollection)
	if err != nil {
		return fmt.Errorf("seed: could not find %s collection: %w", ConfigsCollection, err)
	}
	existing, err := app.CountRecords(configsCol)
	if err != nil {
		return fmt.Errorf("seed: could not count configs: %w", err)
	}
	if existing > 0 {
		return nil
	}
	for _, c := range configs {
		record := core.NewRecord(configsCol)
		record.Set("class", c.Class)
		record.Set("name", c.Name)
		record.Set("guid", c.GUID)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: could not create config %s/%s: %w", c.Class, c.Name, err)
		}
	}
	if len(configs) > 0 {
		log.WithField("count", len(configs)).Info("seed: created config entries")
	}
	return nil
}
