package models

import "encoding/json"

// Property types with dedicated serialization rules. Everything else is
// treated as sanitized free text.
const (
	PropertyTypeEmail    = "email"
	PropertyTypeCheckbox = "checkbox"
	PropertyTypeTel      = "tel"
	PropertyTypeText     = "text"
	PropertyTypeHidden   = "hidden"
	PropertyTypeNumber   = "number"
	PropertyTypeSelect   = "select"
)

// PropertyDefinition describes one contact property collected by the
// form and sent to the remote CRM.
type PropertyDefinition struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required,omitempty"`
	Default  string `json:"default,omitempty"`

	// Options lists the allowed values for select-typed properties.
	Options []string `json:"options,omitempty"`

	// Attributes holds extra rendering attributes the API passes through
	// to clients untouched (autofocus, placeholder, ...).
	Attributes map[string]string `json:"attributes,omitempty"`
}

// PropertySchema is the ordered set of configured properties. Order is
// significant: it controls serialization order for create/update calls
// and rendering order for clients.
type PropertySchema []PropertyDefinition

// DefaultPropertySchema mirrors the minimal schema every deployment
// needs: the email property alone.
func DefaultPropertySchema() PropertySchema {
	return PropertySchema{
		{
			Key:        "email",
			Type:       PropertyTypeEmail,
			Label:      "Email",
			Required:   true,
			Attributes: map[string]string{"autofocus": "autofocus"},
		},
	}
}

// ParsePropertySchema decodes an operator-supplied JSON schema. The
// schema must include an email property; the default is returned for
// empty input.
func ParsePropertySchema(raw string) (PropertySchema, error) {
	if raw == "" {
		return DefaultPropertySchema(), nil
	}
	var schema PropertySchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil, err
	}
	if _, ok := schema.Get("email"); !ok {
		return nil, ErrSchemaMissingEmail
	}
	return schema, nil
}

// Get returns the definition for a property key.
func (s PropertySchema) Get(key string) (PropertyDefinition, bool) {
	for _, def := range s {
		if def.Key == key {
			return def, true
		}
	}
	return PropertyDefinition{}, false
}
