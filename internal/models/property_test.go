package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropertySchema_Default(t *testing.T) {
	schema, err := ParsePropertySchema("")
	require.NoError(t, err)

	def, ok := schema.Get("email")
	require.True(t, ok)
	assert.Equal(t, PropertyTypeEmail, def.Type)
	assert.True(t, def.Required)
}

func TestParsePropertySchema_PreservesOrder(t *testing.T) {
	raw := `[
		{"key": "email", "type": "email", "label": "Email", "required": true},
		{"key": "first_name", "type": "text", "label": "First Name"},
		{"key": "newsletter", "type": "checkbox", "label": "Weekly newsletter", "default": "true"},
		{"key": "frequency", "type": "select", "label": "Frequency", "options": ["daily", "weekly"]}
	]`

	schema, err := ParsePropertySchema(raw)
	require.NoError(t, err)
	require.Len(t, schema, 4)

	keys := make([]string, 0, len(schema))
	for _, def := range schema {
		keys = append(keys, def.Key)
	}
	assert.Equal(t, []string{"email", "first_name", "newsletter", "frequency"}, keys)

	freq, ok := schema.Get("frequency")
	require.True(t, ok)
	assert.Equal(t, []string{"daily", "weekly"}, freq.Options)
}

func TestParsePropertySchema_MissingEmail(t *testing.T) {
	_, err := ParsePropertySchema(`[{"key": "first_name", "type": "text"}]`)
	assert.ErrorIs(t, err, ErrSchemaMissingEmail)
}

func TestParsePropertySchema_BadJSON(t *testing.T) {
	_, err := ParsePropertySchema(`{not json`)
	assert.Error(t, err)
}

func TestMessages_GetAndMerge(t *testing.T) {
	messages := DefaultMessages()
	assert.NotEmpty(t, messages.Get(MessageError))
	assert.NotEmpty(t, messages.Get(MessageOptOut))

	merged := messages.Merge(Messages{MessageError: "custom error"})
	assert.Equal(t, "custom error", merged.Get(MessageError))
	assert.Equal(t, messages.Get(MessageNotFound), merged.Get(MessageNotFound))

	// Unknown overrides pass through untouched defaults
	var sparse Messages = Messages{}
	assert.Equal(t, DefaultMessages()[MessageSignedUp], sparse.Get(MessageSignedUp))
}
