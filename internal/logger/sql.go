package logger

import (
	"slices"

	"github.com/rs/zerolog"
)

// RedactedValue replaces every parameter listed in a statement's redaction list.
const RedactedValue = "*****"

// Statement describes one SQL statement handed to the logging collaborator.
type Statement struct {
	// Op names the store operation issuing the statement (e.g. "user.add").
	Op    string
	Query string
	Args  []any
	// Redact lists positions in Args that must never reach the log.
	Redact []int
	// Write marks state-changing statements; they log at info, reads at debug.
	Write bool
	Note  string
}

// Params returns a copy of s.Args with redacted positions masked.
func (s Statement) Params() []any {
	out := make([]any, len(s.Args))
	for i, a := range s.Args {
		if slices.Contains(s.Redact, i) {
			out[i] = RedactedValue
			continue
		}
		out[i] = a
	}
	return out
}

// SQL emits a structured record for s.
func SQL(l zerolog.Logger, s Statement) {
	ev := l.Debug()
	if s.Write {
		ev = l.Info()
	}
	ev = ev.Str("type", "sql").
		Str("op", s.Op).
		Str("query", s.Query).
		Interface("params", s.Params())
	if s.Note != "" {
		ev = ev.Str("note", s.Note)
	}
	ev.Msg("sql statement")
}
