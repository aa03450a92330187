package kvconf

// An Entry is one key=value line.
type Entry struct {
	Key   string
	Value string
}

// A Document holds every entry of a document in input order, including
// repeated keys. It decodes any document that is free of syntax errors.
type Document []Entry

// UnmarshalKV implements [Unmarshaler].
func (d *Document) UnmarshalKV(m *MapAccess) error {
	for {
		key, ok, err := m.NextKey()
		if err != nil || !ok {
			return err
		}
		val, err := m.Value()
		if err != nil {
			return err
		}
		s, err := val.String()
		if err != nil {
			return err
		}
		*d = append(*d, Entry{Key: key, Value: s})
	}
}

// Get returns the last value assigned to key.
func (d Document) Get(key string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Key == key {
			return d[i].Value, true
		}
	}
	return "", false
}

// Lookup returns every value assigned to key, in input order.
func (d Document) Lookup(key string) []string {
	var values []string
	for _, e := range d {
		if e.Key == key {
			values = append(values, e.Value)
		}
	}
	return values
}

// A Group is a key with all of its values.
type Group struct {
	Key    string
	Values []string
}

// Groups collects the values of each key. Groups are ordered by the first
// appearance of their key.
func (d Document) Groups() []Group {
	var groups []Group
	index := make(map[string]int)
	for _, e := range d {
		i, ok := index[e.Key]
		if !ok {
			i = len(groups)
			index[e.Key] = i
			groups = append(groups, Group{Key: e.Key})
		}
		groups[i].Values = append(groups[i].Values, e.Value)
	}
	return groups
}

// Tree returns the document as a map. A key that appears once maps to its
// string value; a repeated key maps to a []any of all its values.
func (d Document) Tree() map[string]any {
	m := make(map[string]any)
	for _, g := range d.Groups() {
		if len(g.Values) == 1 {
			m[g.Key] = g.Values[0]
			continue
		}
		values := make([]any, len(g.Values))
		for i, v := range g.Values {
			values[i] = v
		}
		m[g.Key] = values
	}
	return m
}
