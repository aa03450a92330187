package kvconf

import "iter"

// flattenOptionResult converts the (v, err, ok) triple returned by a pull
// function, where ok is false once the sequence is done, into (v, ok, err)
// where an error takes precedence over everything else.
func flattenOptionResult[T any](v T, err error, ok bool) (T, bool, error) {
	var zero T
	switch {
	case !ok:
		return zero, false, nil
	case err != nil:
		return zero, false, err
	}
	return v, true, nil
}

// flattenResultOption is the inverse of flattenOptionResult: an error is
// reported as a produced element so that it reaches the consumer.
func flattenResultOption[T any](v T, ok bool, err error) (T, error, bool) {
	var zero T
	switch {
	case err != nil:
		return zero, err, true
	case !ok:
		return zero, nil, false
	}
	return v, nil, true
}

// okLines lifts a sequence that cannot fail into the fallible shape the
// decoder consumes. The error it yields is always nil; a decoder built over
// it treats a non-nil error as unreachable.
func okLines(lines iter.Seq[string]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for line := range lines {
			if !yield(line, nil) {
				return
			}
		}
	}
}

// unreachable panics. Its result type lets callers write
// "return ..., unreachable(...)" at the end of a function.
func unreachable(what string) error {
	panic("kvconf: unreachable: " + what)
}
