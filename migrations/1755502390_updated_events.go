package migrations

import (
	"encoding/json"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/daos"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/models/schema"
)

// Adds the activities relation to events. Runs after both collections exist
// because the relation is circular (activities.event points back at events).
func init() {
	m.Register(func(db dbx.Builder) error {
		dao := daos.New(db)

		collection, err := dao.FindCollectionByNameOrId("q5lj0n2hs8e4r7b")
		if err != nil {
			return err
		}

		newActivities := &schema.SchemaField{}
		if err := json.Unmarshal([]byte(`{
			"system": false,
			"id": "evtactvts",
			"name": "activities",
			"type": "relation",
			"required": false,
			"presentable": false,
			"unique": false,
			"options": {
				"collectionId": "zx84kc1vwm3tq2p",
				"cascadeDelete": false,
				"minSelect": null,
				"maxSelect": null,
				"displayFields": null
			}
		}`), newActivities); err != nil {
			return err
		}
		collection.Schema.AddField(newActivities)

		return dao.SaveCollection(collection)
	}, func(db dbx.Builder) error {
		dao := daos.New(db)

		collection, err := dao.FindCollectionByNameOrId("q5lj0n2hs8e4r7b")
		if err != nil {
			return err
		}

		collection.Schema.RemoveField("evtactvts")

		return dao.SaveCollection(collection)
	})
}
