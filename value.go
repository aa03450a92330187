package kvconf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Value is the value side of one document entry. Each method reads the
// value from the document and coerces it to the requested shape; exactly one
// method may be called per entry.
type Value struct {
	d    *Decoder
	key  string
	seq  int
	used bool
}

// ValueUnmarshaler is implemented by types that decode a single value
// themselves.
type ValueUnmarshaler interface {
	UnmarshalKVValue(v *Value) error
}

// Key returns the key the value belongs to.
func (v *Value) Key() string {
	return v.key
}

// text consumes the pending value. It fails if the value was already read,
// through v or through another Value handed out for the same key.
func (v *Value) text() (string, error) {
	if v.used || v.seq != v.d.keys || !v.d.slot.keyed {
		return "", invalidState("key %q: value already read", v.key)
	}
	v.used = true
	return v.d.nextValue()
}

func (v *Value) parseError(err error) error {
	return &Error{Kind: Custom, Msg: fmt.Sprintf("key %q: %s", v.key, err), err: err}
}

var boolWords = map[string]bool{
	"true": true, "yes": true, "1": true,
	"false": false, "no": false, "0": false,
}

// Bool decodes a boolean. The value is lowercased and matched against
// true, yes, 1 and false, no, 0.
//
// Any other text decodes as false without an error, so a misspelled value
// silently disables the setting.
func (v *Value) Bool() (bool, error) {
	s, err := v.text()
	if err != nil {
		return false, err
	}
	return boolWords[cases.Lower(language.Und).String(s)], nil
}

func (v *Value) parseInt(bits int) (int64, error) {
	s, err := v.text()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, v.parseError(err)
	}
	return n, nil
}

func (v *Value) parseUint(bits int) (uint64, error) {
	s, err := v.text()
	if err != nil {
		return 0, err
	}
	// One leading '+' is allowed, as for signed integers.
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			ne.Num = s
		}
		return 0, v.parseError(err)
	}
	return n, nil
}

func (v *Value) parseFloat(bits int) (float64, error) {
	s, err := v.text()
	if err != nil {
		return 0, err
	}
	if hexFloat(s) {
		return 0, v.parseError(&strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax})
	}
	f, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, v.parseError(err)
	}
	return f, nil
}

// hexFloat reports whether s uses the 0x prefix that ParseFloat accepts.
// Only decimal floats are valid values.
func hexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Int8 decodes a decimal int8.
func (v *Value) Int8() (int8, error) {
	n, err := v.parseInt(8)
	return int8(n), err
}

// Int16 decodes a decimal int16.
func (v *Value) Int16() (int16, error) {
	n, err := v.parseInt(16)
	return int16(n), err
}

// Int32 decodes a decimal int32.
func (v *Value) Int32() (int32, error) {
	n, err := v.parseInt(32)
	return int32(n), err
}

// Int64 decodes a decimal int64.
func (v *Value) Int64() (int64, error) {
	return v.parseInt(64)
}

// Uint8 decodes a decimal uint8.
func (v *Value) Uint8() (uint8, error) {
	n, err := v.parseUint(8)
	return uint8(n), err
}

// Uint16 decodes a decimal uint16.
func (v *Value) Uint16() (uint16, error) {
	n, err := v.parseUint(16)
	return uint16(n), err
}

// Uint32 decodes a decimal uint32.
func (v *Value) Uint32() (uint32, error) {
	n, err := v.parseUint(32)
	return uint32(n), err
}

// Uint64 decodes a decimal uint64.
func (v *Value) Uint64() (uint64, error) {
	return v.parseUint(64)
}

// Float32 decodes a float32.
func (v *Value) Float32() (float32, error) {
	f, err := v.parseFloat(32)
	return float32(f), err
}

// Float64 decodes a float64.
func (v *Value) Float64() (float64, error) {
	return v.parseFloat(64)
}

// Char is a character-shaped value. Text that is not exactly one character
// is kept whole in Str rather than rejected.
type Char struct {
	Rune   rune
	Str    string
	Single bool
}

func (c Char) String() string {
	if c.Single {
		return string(c.Rune)
	}
	return c.Str
}

// Char decodes a single character, falling back to the whole text.
func (v *Value) Char() (Char, error) {
	s, err := v.text()
	if err != nil {
		return Char{}, err
	}
	if r, n := utf8.DecodeRuneInString(s); n > 0 && n == len(s) {
		return Char{Rune: r, Single: true}, nil
	}
	return Char{Str: s}, nil
}

// String returns the value as written, without surrounding whitespace.
func (v *Value) String() (string, error) {
	return v.text()
}

// Bytes returns the value as written.
func (v *Value) Bytes() ([]byte, error) {
	s, err := v.text()
	return []byte(s), err
}

// Any is used when the caller has no expectation about the shape. Values
// are always strings.
func (v *Value) Any() (string, error) {
	return v.text()
}

// Enum selects a unit variant by name. If variants is empty any name is
// accepted.
func (v *Value) Enum(variants ...string) (string, error) {
	s, err := v.text()
	if err != nil {
		return "", err
	}
	if len(variants) > 0 && !slices.Contains(variants, s) {
		quoted := make([]string, len(variants))
		for i, name := range variants {
			quoted[i] = strconv.Quote(name)
		}
		return "", Errorf("key %q: unknown variant %q, expected one of %s", v.key, s, strings.Join(quoted, ", "))
	}
	return s, nil
}

// Optional calls fn with v. A key that is present always has a value, even
// an empty one; absent keys never reach the decoder.
func (v *Value) Optional(fn func(v *Value) error) error {
	return fn(v)
}

// Map fails: values cannot hold nested mappings.
func (v *Value) Map() error {
	return invalidState("key %q: nested mappings are not supported", v.key)
}

// Seq fails: values cannot hold sequences.
func (v *Value) Seq() error {
	return invalidState("key %q: sequences are not supported", v.key)
}
