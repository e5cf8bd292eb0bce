package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ToJSON renders the envelope as compact JSON:
//
//	{"status":"success","data":[{"alias":value,...},...]}
//	{"status":"error","message":"..."}
//
// It never fails. Values encoding/json cannot represent are rendered in their
// string form, and if encoding still goes wrong the result is an error
// envelope describing the problem.
func (e Envelope) ToJSON() (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fallbackJSON(fmt.Sprintf("failed to encode result: %v", r))
		}
	}()

	b, err := e.encode()
	if err != nil {
		return fallbackJSON("failed to encode result: " + err.Error())
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler with the same permissive rules as ToJSON.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return e.encode()
}

func (e Envelope) encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if !e.IsSuccess() {
		message := e.message
		if message == "" {
			message = "unknown error"
		}
		buf.WriteString(`{"status":"error","message":`)
		if err := writeValue(buf, message); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	buf.WriteString(`{"status":"success","data":[`)
	for i, row := range e.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeRow(buf, row); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, row Row) error {
	if row == nil {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteByte('{')
	for pair, first := row.Oldest(), true; pair != nil; pair, first = pair.Next(), false {
		if !first {
			buf.WriteByte(',')
		}
		if err := writeValue(buf, pair.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeValue(buf, jsonSafe(pair.Value)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeValue encodes v without HTML escaping so text such as "a<b" is kept
// as-is.
func writeValue(buf *bytes.Buffer, v any) error {
	tmp := &bytes.Buffer{}
	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// jsonSafe returns a value encoding/json can always encode.
func jsonSafe(v any) any {
	switch val := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case float64:
		return floatValue(val)
	case float32:
		if f := float64(val); math.IsNaN(f) || f == math.Trunc(f) {
			return floatValue(f)
		}
		return val
	case []byte:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case Row:
		if val == nil {
			return nil
		}
		out := NewRow(val.Len())
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, jsonSafe(pair.Value))
		}
		return rowValue{out}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonSafe(item)
		}
		return out
	case error:
		return val.Error()
	case fmt.Stringer:
		// fmt recovers from panicking or nil-receiver String methods.
		return fmt.Sprint(val)
	}

	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}

// floatValue keeps whole floats distinguishable from integers: 1.0 is
// rendered as 1.0, not 1. Non-finite values become strings.
func floatValue(val float64) any {
	switch {
	case math.IsNaN(val) || math.IsInf(val, 0):
		return fmt.Sprint(val)
	case val != math.Trunc(val):
		return val
	case math.Abs(val) >= 1e16:
		return json.Number(strconv.FormatFloat(val, 'g', -1, 64))
	default:
		return json.Number(strconv.FormatFloat(val, 'f', -1, 64) + ".0")
	}
}

// rowValue lets a nested row go through writeRow instead of the ordered map's
// own MarshalJSON, keeping the no-HTML-escape rule.
type rowValue struct {
	row Row
}

func (r rowValue) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeRow(buf, r.row); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fallbackJSON(message string) string {
	b, err := json.Marshal(struct {
		Status  Status `json:"status"`
		Message string `json:"message"`
	}{StatusError, message})
	if err != nil {
		return `{"status":"error","message":"failed to encode result"}`
	}
	return string(b)
}
