package collections

import (
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"
)

const (
	ConfigsCollection       = "console_configs"
	UsersCollection         = "console_users"
	AccessHistoryCollection = "access_history"
)

// Setup programmatically creates/ensures the console_configs, console_users
// and access_history collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, ConfigsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "class", Required: true, Max: 100})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "guid", Required: true, Max: 64})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_console_configs_class_name", true, "class, name", "")
	})

	ensureCollection(app, UsersCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "user_id", Required: true, Max: 50})
		c.Fields.Add(&core.TextField{Name: "user_name", Required: true, Max: 100})
		c.Fields.Add(&core.TextField{Name: "department", Required: false, Max: 100})
		// 1 = admin, 0 = user
		c.Fields.Add(&core.NumberField{Name: "user_level", Required: false, OnlyInt: true})
		c.Fields.Add(&core.BoolField{Name: "is_active", Required: false})
		c.Fields.Add(&core.TextField{Name: "password_hash", Required: false, Hidden: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_console_users_user_id", true, "user_id", "")
	})

	ensureCollection(app, AccessHistoryCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "user_id", Required: true, Max: 50})
		c.Fields.Add(&core.TextField{Name: "action", Required: false, Max: 50})
		c.Fields.Add(&core.TextField{Name: "ip", Required: false, Max: 64})
		c.Fields.Add(&core.TextField{Name: "device", Required: false, Max: 200})
		c.Fields.Add(&core.BoolField{Name: "success", Required: false})
		c.Fields.Add(&core.DateField{Name: "accessed_at", Required: true})
		c.AddIndex("idx_access_history_user", false, "user_id, accessed_at", "")
	})
}

// ensureCollection returns the collection called name, creating it with the
// fields from addFields on first start. Existing schemas are not altered.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	log := logrus.WithField("component", "collections")

	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Debugf("Collection %q already exists, skipping creation.", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	log.Infof("Created collection %q (id=%s)", name, collection.Id)
	return collection
}
