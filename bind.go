package kvconf

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// Defaulter is implemented by targets that fill in their defaults before
// the document is applied. Keys absent from the document keep these values.
type Defaulter interface {
	SetDefaults()
}

// Enum is implemented by named types decoded by variant name. UnmarshalText
// receives one of the names returned by Variants.
type Enum interface {
	encoding.TextUnmarshaler
	Variants() []string
}

type structField struct {
	index    int
	name     string
	required bool
}

type structFields struct {
	byName map[string]structField
	list   []structField
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// fieldMap lists the settable fields of s under the keys they are decoded
// from. A field is found by its kv tag, or else by its Go name and the
// snake_case form of that name.
func fieldMap(s reflect.Type) (structFields, error) {
	fields := structFields{byName: make(map[string]structField)}
	add := func(name string, f structField) error {
		if _, ok := fields.byName[name]; ok {
			return fmt.Errorf("multiple fields with name %q", name)
		}
		fields.byName[name] = f
		return nil
	}
	for i := range s.NumField() {
		field := s.Field(i)
		if !field.IsExported() {
			continue
		}
		f := structField{index: i, name: field.Name}
		tag, hasTag := field.Tag.Lookup("kv")
		if hasTag {
			var opts string
			tag, opts, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			for opt := range strings.FieldsFuncSeq(opts, func(r rune) bool { return r == ',' }) {
				switch opt {
				case "required":
					f.required = true
				default:
					return structFields{}, fmt.Errorf("field %s: unknown option %q", field.Name, opt)
				}
			}
		}
		if tag != "" {
			f.name = tag
			if err := add(tag, f); err != nil {
				return structFields{}, err
			}
		} else {
			if err := add(field.Name, f); err != nil {
				return structFields{}, err
			}
			if snake := toSnakeCase(field.Name); snake != field.Name {
				if err := add(snake, f); err != nil {
					return structFields{}, err
				}
			}
		}
		fields.list = append(fields.list, f)
	}
	return fields, nil
}

// bind decodes the document into v using reflection. The document root is
// a mapping, so v must point to a struct or to a map with string keys.
func bind(m *MapAccess, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return Errorf("value must be a non-nil pointer, got %T", v)
	}
	if d, ok := v.(Defaulter); ok {
		d.SetDefaults()
	}
	out := val.Elem()
	switch out.Kind() {
	case reflect.Struct:
		return bindStruct(m, out)
	case reflect.Map:
		if out.Type().Key().Kind() != reflect.String {
			return Errorf("map key type must be a string kind, got %s", out.Type().Key())
		}
		return bindMap(m, out)
	}
	return Errorf("cannot decode a document into %s", out.Type())
}

func bindStruct(m *MapAccess, out reflect.Value) error {
	fields, err := fieldMap(out.Type())
	if err != nil {
		return custom(err)
	}
	seen := make(map[int]bool)
	for {
		key, ok, err := m.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		f, ok := fields.byName[key]
		if !ok {
			return invalidState("line %d: unknown field %q", m.Line(), key)
		}
		if seen[f.index] {
			return Errorf("line %d: duplicate field %q", m.Line(), key)
		}
		seen[f.index] = true
		val, err := m.Value()
		if err != nil {
			return err
		}
		if err := decodeValue(val, out.Field(f.index)); err != nil {
			return err
		}
	}
	for _, f := range fields.list {
		if f.required && !seen[f.index] {
			return Errorf("missing field %q", f.name)
		}
	}
	return nil
}

// bindMap stores every entry in out. A repeated key overwrites the earlier
// value.
func bindMap(m *MapAccess, out reflect.Value) error {
	if out.IsNil() {
		out.Set(reflect.MakeMap(out.Type()))
	}
	for {
		key, ok, err := m.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		val, err := m.Value()
		if err != nil {
			return err
		}
		elem := reflect.New(out.Type().Elem()).Elem()
		if err := decodeValue(val, elem); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(out.Type().Key()), elem)
	}
}

var charType = reflect.TypeFor[Char]()

// decodeValue requests the shape matching out's type from v.
func decodeValue(v *Value, out reflect.Value) error {
	if out.Kind() == reflect.Pointer {
		return v.Optional(func(v *Value) error {
			if out.IsNil() {
				out.Set(reflect.New(out.Type().Elem()))
			}
			return decodeValue(v, out.Elem())
		})
	}
	if out.CanAddr() {
		switch u := out.Addr().Interface().(type) {
		case ValueUnmarshaler:
			return u.UnmarshalKVValue(v)
		case Enum:
			name, err := v.Enum(u.Variants()...)
			if err != nil {
				return err
			}
			return unmarshalText(v, u, name)
		case encoding.TextUnmarshaler:
			s, err := v.String()
			if err != nil {
				return err
			}
			return unmarshalText(v, u, s)
		}
	}
	if out.Type() == charType {
		c, err := v.Char()
		if err != nil {
			return err
		}
		out.Set(reflect.ValueOf(c))
		return nil
	}

	switch out.Kind() {
	case reflect.Bool:
		b, err := v.Bool()
		if err != nil {
			return err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := v.parseInt(bitSize(out.Kind()))
		if err != nil {
			return err
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := v.parseUint(bitSize(out.Kind()))
		if err != nil {
			return err
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := v.parseFloat(bitSize(out.Kind()))
		if err != nil {
			return err
		}
		out.SetFloat(f)
	case reflect.String:
		s, err := v.String()
		if err != nil {
			return err
		}
		out.SetString(s)
	case reflect.Interface:
		if out.NumMethod() != 0 {
			return Errorf("key %q: cannot decode into %s", v.Key(), out.Type())
		}
		s, err := v.Any()
		if err != nil {
			return err
		}
		out.Set(reflect.ValueOf(s))
	case reflect.Slice:
		if out.Type().Elem().Kind() == reflect.Uint8 {
			b, err := v.Bytes()
			if err != nil {
				return err
			}
			out.SetBytes(b)
			return nil
		}
		return v.Seq()
	case reflect.Array:
		return v.Seq()
	case reflect.Struct, reflect.Map:
		return v.Map()
	default:
		return Errorf("key %q: unsupported type %s", v.Key(), out.Type())
	}
	return nil
}

func unmarshalText(v *Value, u encoding.TextUnmarshaler, s string) error {
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return Errorf("key %q: %w", v.Key(), err)
	}
	return nil
}

// bitSize returns the width of a numeric kind for strconv.
func bitSize(kind reflect.Kind) int {
	switch kind {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 32
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return strconv.IntSize
	default:
		return 64
	}
}
