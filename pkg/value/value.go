// Package value implements the tagged scalar value used throughout the
// evaluation engine: strings, integers, floats, booleans and null, each
// carrying a deterministic textual form for comparison and hashing.
package value

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Tag identifies which comparison strategy applies to a Value.
type Tag int

const (
	TagNull Tag = iota
	TagString
	TagInteger
	TagFloat
	TagBool
)

func (t Tag) String() string {
	switch t {
	case TagString:
		return "string"
	case TagInteger:
		return "integer"
	case TagFloat:
		return "float"
	case TagBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a tagged scalar with a canonical textual form. The tag fixes
// which comparison strategy a caller should use; Text is produced by
// deterministic rules so that two Values built from the same logical
// scalar always compare equal textually.
type Value struct {
	Tag  Tag
	Text string
}

// Null is the zero Value.
var Null = Value{Tag: TagNull}

// NewString builds a String-tagged Value.
func NewString(s string) Value {
	return Value{Tag: TagString, Text: s}
}

// NewInteger builds an Integer-tagged Value from its canonical text.
func NewInteger(i int64) Value {
	return Value{Tag: TagInteger, Text: strconv.FormatInt(i, 10)}
}

// NewFloat builds a Float-tagged Value from its canonical text.
func NewFloat(f float64) Value {
	return Value{Tag: TagFloat, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NewBool builds a Bool-tagged Value.
func NewBool(b bool) Value {
	if b {
		return Value{Tag: TagBool, Text: "true"}
	}
	return Value{Tag: TagBool, Text: "false"}
}

// IsNull reports whether v is the Null tag.
func (v Value) IsNull() bool {
	return v.Tag == TagNull
}

// Int returns the value parsed as a signed 64-bit integer.
func (v Value) Int() (int64, bool) {
	i, err := strconv.ParseInt(v.Text, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Float returns the value parsed as a 64-bit float.
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the value's boolean text (strict: only "true"/"false").
func (v Value) Bool() (bool, bool) {
	switch v.Text {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// FromJSON discriminates a decoded JSON scalar by shape: numbers become
// Integer or Float depending on whether they carry a fractional part,
// booleans become Bool, strings stay String (even if they look numeric
// or boolean), and nil becomes Null.
func FromJSON(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case bool:
		return NewBool(t)
	case string:
		return NewString(t)
	case json.Number:
		return numberValue(string(t))
	case float64:
		return numberValue(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return Null
	}
}

func numberValue(text string) Value {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return NewInteger(i)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return NewString(text)
	}
	return NewFloat(f)
}

// MarshalJSON renders the Value tag-directed: Integer as a JSON number
// without a decimal point, Float as a JSON number with one, Bool as a
// JSON boolean, String as a JSON string, Null as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Tag {
	case TagInteger:
		return []byte(v.Text), nil
	case TagFloat:
		if strings.ContainsAny(v.Text, ".eE") {
			return []byte(v.Text), nil
		}
		return []byte(v.Text + ".0"), nil
	case TagBool:
		return []byte(v.Text), nil
	case TagString:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON discriminates by shape, matching FromJSON's rules.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromJSON(raw)
	return nil
}
