package schema

import "fmt"

// Error is the SchemaError kind from : malformed JSON Schema,
// surfaced with a reference trail (the path of property names / ref keys
// that led to the bad node) so a caller can locate the offending fragment
// inside a large upstream tool descriptor.
type Error struct {
	Reason string
	Trail []string
}

func (e *Error) Error() string {
	if len(e.Trail) == 0 {
		return e.Reason
	}
	path := e.Trail[0]
	for _, seg := range e.Trail[1:] {
		path += "." + seg
	}
	return fmt.Sprintf("%s (at %s)", e.Reason, path)
}

func newError(reason string, trail []string) *Error {
	t := make([]string, len(trail))
	copy(t, trail)
	return &Error{Reason: reason, Trail: t}
}
