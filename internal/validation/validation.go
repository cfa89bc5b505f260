package validation

import (
	"fmt"
	"strings"
)

// Error is a field-level validation failure. It carries one message per
// offending field so the API can report everything wrong with a request at
// once.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}
