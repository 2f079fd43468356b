package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMongoRecord_RoundTrip(t *testing.T) {
	doc := testDocument(`{"skills":["go","sql"]}`)
	rec := toMongoRecord("resume_rewrite_7", doc)

	assert.Equal(t, "resume_rewrite_7", rec.ID)

	data, err := bson.Marshal(rec)
	assert.NoError(t, err)

	var decoded mongoRecord
	assert.NoError(t, bson.Unmarshal(data, &decoded))
	got := decoded.document()
	assert.JSONEq(t, string(doc.Result), string(got.Result))
	assert.Equal(t, doc.CreatedAt, got.CreatedAt)
	assert.Equal(t, doc.Operation, got.Operation)
}

func TestMongoRecord_FieldNames(t *testing.T) {
	data, err := bson.Marshal(toMongoRecord("k", testDocument(`1`)))
	assert.NoError(t, err)

	var raw bson.M
	assert.NoError(t, bson.Unmarshal(data, &raw))
	for _, field := range []string{"_id", "result", "createdAt", "operation"} {
		assert.Contains(t, raw, field)
	}
}

func TestOpenMongo_InvalidURI(t *testing.T) {
	_, err := OpenMongo(context.Background(), "not-a-mongo-uri", "")
	assert.Error(t, err)
}
