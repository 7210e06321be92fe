package service

import (
	"bytes"
	"encoding/json"
)

// Payload is a decoded JSON object body. Keeping the raw values lets update
// tell "key absent" from "key set to null".
type Payload map[string]json.RawMessage

// DecodePayload parses body as a JSON object. Anything else (empty body,
// malformed JSON, arrays, scalars) yields an empty payload.
func DecodePayload(body []byte) Payload {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return Payload{}
	}
	return p
}

func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Text returns the string value of key. Absent keys, null and falsy values
// (false, 0, "", [], {}) read as "". ok is false for any other non-string.
func (p Payload) Text(key string) (string, bool) {
	raw, exists := p[key]
	if !exists {
		return "", true
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	if s, isString := v.(string); isString {
		return s, true
	}
	if !truthy(v) {
		return "", true
	}
	return "", false
}

// Bool coerces key using JSON truthiness: false, null, 0, "", [] and {} are
// false, everything else is true. Absent keys return def.
func (p Payload) Bool(key string, def bool) bool {
	raw, exists := p[key]
	if !exists {
		return def
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return def
	}
	return truthy(v)
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
