// Package kvconf decodes flat key=value configuration files into Go values.
//
//	; passive mode
//	pasv_enable = yes
//	listen_port = 21
//	# empty, but present
//	listen_address =
//
// # Lines
//
// Every line is one of three things. A line starting with ; or # is a
// comment. A line that is completely empty is blank. Anything else must
// contain an '=': the text before the first '=' is the key and the text
// after it is the value, both with surrounding whitespace removed. Whitespace
// inside keys and values is kept, and further '=' characters belong to the
// value.
//
//	; key "greeting", value "hello = world ; not a comment"
//	greeting = hello = world ; not a comment
//
// There is no quoting, escaping, line continuation or section syntax, and
// comments only start at the beginning of a line. A non-blank line without
// '=' is a syntax error, and so is a line holding only spaces.
//
// # Values
//
// Values are text until the target asks for something else:
//
//   - bool: the value is lowercased; true, yes and 1 mean true; false, no
//     and 0 mean false. Anything else is also false.
//   - integers and floats: parsed with [strconv] in the width of the
//     target, so 300 does not fit an int8.
//   - [Char]: a single character, or the whole text if it is longer.
//   - optional values (pointers): a key that is present always has a
//     value, even an empty one. Absence is expressed by leaving the key out.
//   - enums: types implementing [Enum] receive the value as a variant name.
//
// Nested mappings, lists and structs inside a value are not supported and
// fail with [ErrInvalidState].
//
// # Targets
//
// A document is one mapping. [Unmarshal] fills a struct, a map with string
// keys, or any type implementing [Unmarshaler]. Every line must be consumed:
// keys the target does not know about are an error rather than being
// skipped.
package kvconf

// Unmarshal decodes the document in data into v.
//
// If v implements [Unmarshaler], it drives the decoding itself. Otherwise v
// must be a non-nil pointer to a struct or to a map whose key type has kind
// string. If v implements [Defaulter], SetDefaults is called first.
//
// Struct fields are matched by their "kv" tag, or else by the Go field name
// and its snake_case form:
//
//	type Config struct {
//	    PasvEnable    bool    // pasv_enable or PasvEnable
//	    Port          uint32  `kv:"listen_port,required"`
//	    ListenAddress *string // set only if the key is present
//	    Ignored       string  `kv:"-"`
//	}
//
// The only tag option is "required", which makes a missing key an error.
// A key without a matching field fails with [ErrInvalidState], and a key
// given twice for a struct field is an error. Fields implementing
// [ValueUnmarshaler], [Enum] or [encoding.TextUnmarshaler] decode
// themselves; the types listed in the package documentation are decoded
// directly.
//
// Map targets accept every key; when a key repeats, the last value wins.
func Unmarshal(data []byte, v any) error {
	return UnmarshalString(string(data), v)
}

// UnmarshalString is like [Unmarshal] but reads from a string.
func UnmarshalString(s string, v any) error {
	return newStringDecoder(s).Decode(v)
}
