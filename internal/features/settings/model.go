package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value kinds a setting may hold. The kind tag travels with the value so a
// reader never has to guess how to interpret the payload.
const (
	KindString  = "string"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindObject  = "object"
	KindArray   = "array"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindString, KindNumber, KindBoolean, KindObject, KindArray:
		return true
	}
	return false
}

// SettingValue is a tagged union: exactly the field matching Kind carries
// the payload. Object and array values share the raw JSON field.
type SettingValue struct {
	Kind   string          `bson:"kind" json:"kind"`
	String string          `bson:"string_value,omitempty" json:"string_value,omitempty"`
	Number float64         `bson:"number_value,omitempty" json:"number_value,omitempty"`
	Bool   bool            `bson:"bool_value,omitempty" json:"bool_value,omitempty"`
	JSON   json.RawMessage `bson:"json_value,omitempty" json:"json_value,omitempty"`
}

func (v SettingValue) Validate() error {
	if !ValidKind(v.Kind) {
		return fmt.Errorf("unknown value kind %q", v.Kind)
	}
	switch v.Kind {
	case KindObject:
		if !json.Valid(v.JSON) || jsonDelimiter(v.JSON) != '{' {
			return fmt.Errorf("object value must be a json object")
		}
	case KindArray:
		if !json.Valid(v.JSON) || jsonDelimiter(v.JSON) != '[' {
			return fmt.Errorf("array value must be a json array")
		}
	}
	return nil
}

// jsonDelimiter returns the first non-whitespace byte of the payload.
func jsonDelimiter(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

type Setting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TheaterID primitive.ObjectID `bson:"theater_id" json:"theater_id"`
	Category  string             `bson:"category" json:"category"`
	Key       string             `bson:"key" json:"key"`
	Value     SettingValue       `bson:"value" json:"value"`
	// Public settings (branding, menu layout) are readable without a
	// token through the public route; everything else needs auth.
	IsPublic bool `bson:"is_public" json:"is_public"`
	// System settings are read-only through the API for every caller,
	// super admins included. Only seed tooling writes them.
	IsSystem  bool      `bson:"is_system" json:"is_system"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
