package rflink

import (
	"bytes"
	"encoding/json"
)

// jsonObject is a flat JSON object of string members that keeps the order
// in which keys were first set. Setting an existing key replaces its value
// in place.
type jsonObject struct {
	keys   []string
	values map[string]string
}

func newJSONObject(capacity int) *jsonObject {
	return &jsonObject{
		keys:   make([]string, 0, capacity),
		values: make(map[string]string, capacity),
	}
}

// Set stores value under key.
func (o *jsonObject) Set(key, value string) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// SetFields stores every field in order.
func (o *jsonObject) SetFields(fields []Field) {
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
}

// Len returns the number of distinct keys.
func (o *jsonObject) Len() int {
	return len(o.keys)
}

// MarshalJSON implements json.Marshaler.
func (o *jsonObject) MarshalJSON() ([]byte, error) {
	return o.Bytes(), nil
}

// Bytes returns the compact encoding, e.g. {"ID":"2D1","TEMP":"00cf"}.
func (o *jsonObject) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, k)
		buf.WriteByte(':')
		writeJSONString(&buf, o.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// writeJSONString writes s as a JSON string without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
}
