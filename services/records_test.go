package services

import (
	"testing"

	pbmodels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord builds an in-memory record; fields never written stay NULL and
// read back as empty strings, same as a column PocketBase has not touched.
func testRecord(collectionName string, fields ...*schema.SchemaField) *pbmodels.Record {
	collection := &pbmodels.Collection{
		Name:   collectionName,
		Type:   pbmodels.CollectionTypeBase,
		Schema: schema.NewSchema(fields...),
	}
	return pbmodels.NewRecord(collection)
}

func TestDecodeJSONColumn(t *testing.T) {
	var ids []string

	// NULL column reads back empty
	require.NoError(t, decodeJSONColumn("", &ids))
	assert.Nil(t, ids)

	require.NoError(t, decodeJSONColumn("null", &ids))
	assert.Nil(t, ids)

	require.NoError(t, decodeJSONColumn(`["alice","bob"]`, &ids))
	assert.Equal(t, []string{"alice", "bob"}, ids)

	assert.Error(t, decodeJSONColumn(`{broken`, &ids))
}

func TestDecodeOrganization_NullMembers(t *testing.T) {
	// An organization created in the admin UI never has members written;
	// decoding must not fail and the owner must still be recognized.
	record := testRecord("organizations",
		&schema.SchemaField{Name: "name", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "owner", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "members", Type: schema.FieldTypeJson},
	)
	record.Set("name", "Chamber ensemble")
	record.Set("owner", "owner1")

	org, err := decodeOrganization(record)

	require.NoError(t, err)
	assert.Equal(t, "owner1", org.OwnerID)
	assert.Empty(t, org.Members)
	assert.True(t, CallerCanManage(org, "owner1"))
}

func TestDecodeOrganization_WithMembers(t *testing.T) {
	record := testRecord("organizations",
		&schema.SchemaField{Name: "name", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "owner", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "members", Type: schema.FieldTypeJson},
	)
	record.Set("owner", "owner1")
	record.Set("members", `[{"user":"admin1","role":"ADMIN"},{"user":"member1","role":"MEMBER"}]`)

	org, err := decodeOrganization(record)

	require.NoError(t, err)
	require.Len(t, org.Members, 2)
	assert.True(t, CallerCanManage(org, "admin1"))
	assert.False(t, CallerCanManage(org, "member1"))
}

func TestDecodeEvent_NullJSONColumns(t *testing.T) {
	record := testRecord("events",
		&schema.SchemaField{Name: "organization", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "description", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "confirmed_participants", Type: schema.FieldTypeJson},
		&schema.SchemaField{Name: "absent_applicants", Type: schema.FieldTypeJson},
	)
	record.Set("organization", "org1")
	record.Set("description", "Weekly rehearsal")

	event, err := decodeEvent(record)

	require.NoError(t, err)
	assert.Equal(t, "org1", event.OrganizationID)
	assert.Empty(t, event.ConfirmedParticipants)
	assert.Empty(t, event.AbsentApplicants)
	assert.False(t, event.IsParticipantsConfirmed)
}

func TestDecodeActivity_NullParts(t *testing.T) {
	record := testRecord("activities",
		&schema.SchemaField{Name: "event", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "title", Type: schema.FieldTypeText},
		&schema.SchemaField{Name: "parts", Type: schema.FieldTypeJson},
	)
	record.Set("event", "evt1")
	record.Set("title", "Orchestra")

	activity, err := decodeActivity(record)

	require.NoError(t, err)
	assert.NotNil(t, activity.Parts)
	assert.Empty(t, activity.Parts)
}
