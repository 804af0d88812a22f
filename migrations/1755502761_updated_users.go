package migrations

import (
	"encoding/json"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/daos"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/models/schema"
)

// Extends the auth collection with the site role, account status and the
// attendance miss logs written by the confirmation run.
func init() {
	m.Register(func(db dbx.Builder) error {
		dao := daos.New(db)

		collection, err := dao.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		fields := []string{
			`{
				"system": false,
				"id": "usrrole01",
				"name": "role",
				"type": "select",
				"required": false,
				"presentable": false,
				"unique": false,
				"options": {
					"maxSelect": 1,
					"values": ["ADMIN", "USER"]
				}
			}`,
			`{
				"system": false,
				"id": "usrstatus",
				"name": "status",
				"type": "select",
				"required": false,
				"presentable": false,
				"unique": false,
				"options": {
					"maxSelect": 1,
					"values": ["ACTIVE", "INACTIVE"]
				}
			}`,
			`{
				"system": false,
				"id": "usrnapld1",
				"name": "not_applied",
				"type": "json",
				"required": false,
				"presentable": false,
				"unique": false,
				"options": {
					"maxSize": 2000000
				}
			}`,
			`{
				"system": false,
				"id": "usrnapldc",
				"name": "not_applied_count",
				"type": "number",
				"required": false,
				"presentable": false,
				"unique": false,
				"options": {
					"min": 0,
					"max": null,
					"noDecimal": true
				}
			}`,
			`{
				"system": false,
				"id": "usrnprtc1",
				"name": "not_participated",
				"type": "json",
				"required": false,
				"presentable": false,
				"unique": false,
				"options": {
					"maxSize": 2000000
				}
			}`,
			`{
				"system": false,
				"id": "usrnprtcc",
				"name": "not_participated_count",
				"type": "number",
				"required": false,
				"presentable": false,
				"unique": false,
				"options": {
					"min": 0,
					"max": null,
					"noDecimal": true
				}
			}`,
		}

		for _, raw := range fields {
			field := &schema.SchemaField{}
			if err := json.Unmarshal([]byte(raw), field); err != nil {
				return err
			}
			collection.Schema.AddField(field)
		}

		return dao.SaveCollection(collection)
	}, func(db dbx.Builder) error {
		dao := daos.New(db)

		collection, err := dao.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		for _, id := range []string{"usrrole01", "usrstatus", "usrnapld1", "usrnapldc", "usrnprtc1", "usrnprtcc"} {
			collection.Schema.RemoveField(id)
		}

		return dao.SaveCollection(collection)
	})
}
