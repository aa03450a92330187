package kvconf

import (
	"fmt"
	"io"
	"iter"
	"unicode/utf8"
)

type slotState int

const (
	slotInit slotState = iota
	slotEOF
	slotPending
)

// slot is the single-item lookahead. A pending entry holds either a value
// item or an error, never both, and never a blank or comment item. keyed is
// set once the key of the pending item has been handed out.
type slot struct {
	state slotState
	item  item
	err   error
	keyed bool
}

// A Decoder reads one document from a line source. It is not restartable:
// Decode may be called once.
type Decoder struct {
	lines iter.Seq2[string, error]
	next  func() (string, error, bool)
	stop  func()
	// infallible is set when the source is known to never fail.
	infallible bool
	line       int
	slot       slot
	used       bool
	// keys counts the keys handed out, so a Value can tell whether it
	// still belongs to the pending entry.
	keys int
}

// NewDecoder returns a Decoder reading lines from r. If r is a
// *bufio.Reader it is read directly, otherwise it is wrapped in one.
func NewDecoder(r io.Reader) *Decoder {
	return NewLineDecoder(ReaderLines(r))
}

// NewLineDecoder returns a Decoder over an arbitrary line source. The first
// error the source yields ends decoding. The source is not touched until
// Decode is called.
func NewLineDecoder(lines iter.Seq2[string, error]) *Decoder {
	return &Decoder{lines: lines}
}

func newStringDecoder(s string) *Decoder {
	d := NewLineDecoder(okLines(StringLines(s)))
	d.infallible = true
	return d
}

// Decode populates v from the document and then checks that every line was
// consumed. v must implement [Unmarshaler] or be a non-nil pointer to a
// struct or to a map with string keys; see [Unmarshal] for the rules.
func (d *Decoder) Decode(v any) error {
	if d.used {
		return invalidState("Decode called twice")
	}
	d.used = true
	d.start()
	defer d.stop()
	if err := d.decode(v); err != nil {
		return err
	}
	return d.assertEOF()
}

// start begins pulling from the line source. The caller must call d.stop
// once it is done.
func (d *Decoder) start() {
	d.next, d.stop = iter.Pull2(d.lines)
}

func (d *Decoder) decode(v any) error {
	m := &MapAccess{d: d}
	if u, ok := v.(Unmarshaler); ok {
		return u.UnmarshalKV(m)
	}
	return bind(m, v)
}

// pull reads and classifies one line. ok is false once the source is done;
// a read or syntax error is reported with ok set.
func (d *Decoder) pull() (item, error, bool) {
	line, ok, err := flattenOptionResult(d.next())
	if err != nil {
		if d.infallible {
			return item{}, unreachable(fmt.Sprintf("string source failed: %v", err)), true
		}
		err = fmt.Errorf("line %d: %w", d.line+1, err)
	}
	var it item
	if ok {
		d.line++
		if !utf8.ValidString(line) {
			return flattenResultOption(item{}, true, fmt.Errorf("line %d: %w", d.line, errInvalidUTF8))
		}
		it, err = classify(line)
		if se, isSyntax := err.(*SyntaxError); isSyntax {
			se.Line = d.line
		}
	}
	return flattenResultOption(it, ok, err)
}

// populate fills an uninitialized slot, skipping blank and comment lines.
func (d *Decoder) populate() {
	for d.slot.state == slotInit {
		it, err, ok := d.pull()
		switch {
		case !ok:
			d.slot = slot{state: slotEOF}
		case err != nil:
			d.slot = slot{state: slotPending, err: custom(err)}
		case it.kind == itemEmpty, it.kind == itemComment:
		default:
			d.slot = slot{state: slotPending, item: it}
		}
	}
}

// take consumes the pending entry. Consuming an error exhausts the slot.
func (d *Decoder) take() (item, error) {
	s := d.slot
	if s.state == slotEOF || s.err != nil {
		d.slot = slot{state: slotEOF}
	} else {
		d.slot = slot{state: slotInit}
	}
	switch s.state {
	case slotPending:
		return s.item, s.err
	case slotEOF:
		return item{}, ErrUnexpectedEOF
	}
	return item{}, unreachable("take from an unpopulated slot")
}

// peek returns the pending item, or nil at the end of the document. A
// pending error is returned once and the slot is then exhausted.
func (d *Decoder) peek() (*item, error) {
	switch d.slot.state {
	case slotPending:
		if err := d.slot.err; err != nil {
			d.slot = slot{state: slotEOF}
			return nil, err
		}
		return &d.slot.item, nil
	case slotEOF:
		return nil, nil
	}
	return nil, unreachable("peek at an unpopulated slot")
}

type peekKind int

const (
	peekEOF peekKind = iota
	peekValue
)

func (d *Decoder) peekKind() (peekKind, error) {
	d.populate()
	it, err := d.peek()
	switch {
	case err != nil:
		return peekEOF, err
	case it == nil:
		return peekEOF, nil
	case it.kind == itemValue:
		return peekValue, nil
	}
	return peekEOF, unreachable("blank or comment line in the lookahead slot")
}

// nextKey returns the key of the pending item and leaves its value pending.
// A key is handed out once; asking again before the value is read fails.
func (d *Decoder) nextKey() (string, error) {
	d.populate()
	it, err := d.peek()
	switch {
	case err != nil:
		return "", err
	case it == nil:
		return "", ErrUnexpectedEOF
	case it.kind != itemValue:
		return "", ErrInvalidState
	case d.slot.keyed:
		return "", invalidState("line %d: value of the previous key was not read", d.line)
	}
	key := it.key
	it.key = ""
	d.slot.keyed = true
	d.keys++
	return key, nil
}

// nextValue consumes the pending item and returns its value.
func (d *Decoder) nextValue() (string, error) {
	d.populate()
	it, err := d.take()
	if err != nil {
		return "", err
	}
	if it.kind != itemValue {
		return "", ErrInvalidState
	}
	return it.value, nil
}

// assertEOF fails if any key=value line is left in the document.
func (d *Decoder) assertEOF() error {
	d.populate()
	it, err := d.peek()
	switch {
	case err != nil:
		return err
	case d.slot.keyed:
		return invalidState("line %d: value was not read", d.line)
	case it != nil:
		return invalidState("line %d: trailing key %q", d.line, it.key)
	}
	return nil
}

// Unmarshaler is implemented by types that read a whole document
// themselves. UnmarshalKV should call [MapAccess.NextKey] until it reports
// the end of the document; anything left unread is reported as an
// InvalidState error by the caller.
type Unmarshaler interface {
	UnmarshalKV(m *MapAccess) error
}

// MapAccess walks the entries of a document. The document is a single flat
// mapping from keys to values.
type MapAccess struct {
	d   *Decoder
	key string
}

// NextKey returns the next key. ok is false at the end of the document.
func (m *MapAccess) NextKey() (key string, ok bool, err error) {
	kind, err := m.d.peekKind()
	if err != nil || kind == peekEOF {
		return "", false, err
	}
	key, err = m.d.nextKey()
	if err != nil {
		return "", false, err
	}
	m.key = key
	return key, true, nil
}

// Value returns the value belonging to the key last returned by NextKey. The
// value is read from the document only when one of its methods is called,
// and only one such call succeeds. Value fails with [ErrInvalidState] if
// NextKey has not returned the entry's key.
func (m *MapAccess) Value() (*Value, error) {
	kind, err := m.d.peekKind()
	if err != nil {
		return nil, err
	}
	if kind == peekEOF {
		return nil, ErrUnexpectedEOF
	}
	if !m.d.slot.keyed {
		return nil, invalidState("line %d: Value called before NextKey", m.d.line)
	}
	return &Value{d: m.d, key: m.key, seq: m.d.keys}, nil
}

// Line returns the number of the last line read from the source.
func (m *MapAccess) Line() int {
	return m.d.line
}
