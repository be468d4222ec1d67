// internal/app/content/patch.go
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/folio/internal/app/system/docstore"
)

var (
	// ErrUnknownField is returned by Patch for a key the type does not have.
	ErrUnknownField = errors.New("content: unknown field")

	// ErrImmutableField is returned by Patch for an attempt to change the id.
	ErrImmutableField = errors.New("content: field cannot be changed")
)

type patchField struct {
	bsonName string
	typ      reflect.Type
}

var patchTables sync.Map // reflect.Type -> map[string]patchField

// Patch turns a partial JSON object into the fields of a merge write for
// type T. Keys are T's JSON names; values are decoded into the field's Go
// type and keyed by its BSON name. Unknown keys and the id are rejected.
func Patch[T any](raw []byte) (docstore.Fields, error) {
	table := patchTable(reflect.TypeOf((*T)(nil)).Elem())

	var in map[string]json.RawMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	if in == nil {
		return nil, errors.New("patch: expected a JSON object")
	}

	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := docstore.Fields{}
	for _, k := range keys {
		f, ok := table[k]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		if f.bsonName == "_id" {
			return nil, fmt.Errorf("%w: %q", ErrImmutableField, k)
		}
		v := reflect.New(f.typ)
		dec := json.NewDecoder(bytes.NewReader(in[k]))
		if err := dec.Decode(v.Interface()); err != nil {
			return nil, fmt.Errorf("patch field %q: %w", k, err)
		}
		out[f.bsonName] = v.Elem().Interface()
	}
	return out, nil
}

func patchTable(t reflect.Type) map[string]patchField {
	if v, ok := patchTables.Load(t); ok {
		return v.(map[string]patchField)
	}
	table := map[string]patchField{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		jsonName := tagName(sf.Tag.Get("json"), sf.Name)
		bsonName := tagName(sf.Tag.Get("bson"), strings.ToLower(sf.Name))
		if jsonName == "-" || bsonName == "-" {
			continue
		}
		table[jsonName] = patchField{bsonName: bsonName, typ: sf.Type}
	}
	patchTables.Store(t, table)
	return table
}

func tagName(tag, fallback string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return fallback
	}
	return name
}
