package collections_test

import (
	"testing"

	"costconsole/collections"
	"costconsole/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	collections.ConfigsCollection,
	collections.UsersCollection,
	collections.AccessHistoryCollection,
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_Fields(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	fields := map[string][]string{
		collections.ConfigsCollection:       {"class", "name", "guid", "created", "updated"},
		collections.UsersCollection:         {"user_id", "user_name", "department", "user_level", "is_active", "password_hash", "created"},
		collections.AccessHistoryCollection: {"user_id", "action", "ip", "device", "success", "accessed_at"},
	}
	for name, want := range fields {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Fatalf("collection %q: %v", name, err)
		}
		for _, f := range want {
			if col.Fields.GetByName(f) == nil {
				t.Errorf("%s: missing field %q", name, f)
			}
		}
	}
}

func TestSetup_PasswordHashHidden(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId(collections.UsersCollection)

	f, ok := col.Fields.GetByName("password_hash").(*core.TextField)
	if !ok {
		t.Fatal("password_hash is not a TextField")
	}
	if !f.Hidden {
		t.Error("password_hash should be hidden")
	}
}

func TestSetup_ConfigClassNameUnique(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestConfig(t, app, "Category", "Plant", "0b7c8a9e-5d44-4c1e-9a3b-1f2e3d4c5b6a")

	col, _ := app.FindCollectionByNameOrId(collections.ConfigsCollection)
	dup := core.NewRecord(col)
	dup.Set("class", "Category")
	dup.Set("name", "Plant")
	dup.Set("guid", "1b7c8a9e-5d44-4c1e-9a3b-1f2e3d4c5b6a")
	if err := app.Save(dup); err == nil {
		t.Error("expected duplicate (class, name) to be rejected")
	}
}
