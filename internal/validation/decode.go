package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// DecodeJSON decodes a JSON object into the struct pointed to by dst one field
// at a time. A value whose JSON type does not fit its field leaves the field
// at its zero value and is reported as a TypeMismatch violation, so every
// mistyped field of the object is reported. Keys are matched exactly against
// the fields' JSON names; unknown keys are ignored.
//
// Malformed JSON, a body that is not an object or null, and read failures are
// returned as errors.
func DecodeJSON(r io.Reader, dst any, catalog *Catalog) (Violations, error) {
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() || target.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("decode target must be a non-nil struct pointer, got %T", dst)
	}
	if r == nil {
		return nil, io.EOF
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	target = target.Elem()
	var violations Violations
	for i := 0; i < target.NumField(); i++ {
		sf := target.Type().Field(i)
		name := jsonFieldName(sf)
		if !sf.IsExported() || name == "" {
			continue
		}

		value, ok := raw[name]
		if !ok {
			continue
		}

		// Decode into a fresh value; a failed decode may leave a pointer half-set
		decoded := reflect.New(sf.Type)
		if err := json.Unmarshal(value, decoded.Interface()); err != nil {
			violations = append(violations, catalog.typeMismatch(name))
			continue
		}
		target.Field(i).Set(decoded.Elem())
	}

	return violations, nil
}

func (c *Catalog) typeMismatch(field string) Violation {
	message := field + " has an invalid type"
	if r, ok := c.Rule(field, "type"); ok {
		message = r.Messages[LocaleZH]
	}
	return Violation{Field: field, Kind: KindTypeMismatch, Message: message, Tag: "type"}
}
