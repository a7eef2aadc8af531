// Package normalize extracts the localized text from a webhook response whose
// shape is not fixed. Known shapes, in the order they are tried:
//
//	"…"                                  bare JSON string
//	{"localized_content": "…", …}        preferred key
//	{"output": "…"} {"text": "…"} {"content": "…"}
//
// Anything else decodes as KindOther or as an object without a usable key.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFormat reports a response body that is not JSON.
var ErrInvalidFormat = errors.New("upstream returned invalid JSON")

// ResultKeys are probed in priority order.
var ResultKeys = []string{"localized_content", "output", "text", "content"}

// Kind tags the decoded shape of a response.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "other"
	}
}

// Payload is a decoded webhook response.
type Payload struct {
	Kind Kind
	// Text is set for KindString.
	Text string
	// Fields is set for KindObject.
	Fields map[string]json.RawMessage
	// Raw is the compacted JSON body.
	Raw json.RawMessage
}

// Decode parses body into a Payload.
func Decode(body []byte) (Payload, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	raw := json.RawMessage(compact.Bytes())

	switch firstByte(raw) {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return Payload{Kind: KindString, Text: s, Raw: raw}, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return Payload{Kind: KindObject, Fields: fields, Raw: raw}, nil
	default:
		return Payload{Kind: KindOther, Raw: raw}, nil
	}
}

// Localized returns the best candidate for the localized text.
func (p Payload) Localized() (string, bool) {
	switch p.Kind {
	case KindString:
		return p.Text, true
	case KindObject:
		for _, key := range ResultKeys {
			if text, ok := truthy(p.Fields[key]); ok {
				return text, true
			}
		}
	}
	return "", false
}

// truthy reports whether raw holds a value JavaScript would treat as true,
// rendering it as text. Strings are returned unquoted, other values as JSON.
func truthy(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case '{', '[':
		return string(raw), true
	case 't':
		return "true", true
	case 'f', 'n':
		return "", false
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f == 0 {
			return "", false
		}
		return string(raw), true
	}
}

func firstByte(raw json.RawMessage) byte {
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
