// Package envelope holds the uniform success/error wrapper returned for every
// query call, and its JSON rendering.
package envelope

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Status tags the envelope variant.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Row maps a column alias to its value. Iteration and JSON order follow
// insertion order, i.e. the order of the query's RETURN clause.
type Row = *orderedmap.OrderedMap[string, any]

// NewRow returns an empty row sized for n columns.
func NewRow(n int) Row {
	return orderedmap.New[string, any](n)
}

// RowOf builds a row from alternating alias/value pairs. It is meant for tests
// and literals; a trailing alias without value is ignored.
func RowOf(pairs ...any) Row {
	row := NewRow(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		row.Set(key, pairs[i+1])
	}
	return row
}

// Envelope is either a success carrying rows or an error carrying a message.
// The zero value is not meaningful; use Success or Failure.
type Envelope struct {
	status  Status
	rows    []Row
	message string
}

// Success wraps rows. A nil slice is stored as an empty one so that the
// rendered data is [] and never null.
func Success(rows []Row) Envelope {
	if rows == nil {
		rows = []Row{}
	}
	return Envelope{status: StatusSuccess, rows: rows}
}

// Failure wraps an error message. An empty message is replaced so that error
// envelopes always say something.
func Failure(message string) Envelope {
	if message == "" {
		message = "unknown error"
	}
	return Envelope{status: StatusError, message: message}
}

// FromError builds a Failure from err's text.
func FromError(err error) Envelope {
	if err == nil {
		return Failure("")
	}
	return Failure(err.Error())
}

func (e Envelope) Status() Status {
	return e.status
}

func (e Envelope) IsSuccess() bool {
	return e.status == StatusSuccess
}

// Rows returns the rows of a success envelope, nil for an error envelope.
func (e Envelope) Rows() []Row {
	return e.rows
}

// Message returns the message of an error envelope, "" for a success envelope.
func (e Envelope) Message() string {
	return e.message
}
