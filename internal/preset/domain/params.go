package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
)

// ParamKind identifies the scalar kind held by a ParamValue.
type ParamKind int

const (
	// ParamKindNumber holds a float64.
	ParamKindNumber ParamKind = iota
	// ParamKindString holds a string.
	ParamKindString
	// ParamKindBool holds a bool.
	ParamKindBool
)

// ParamValue is one scalar generator parameter: number, string, or bool.
// Anything else (objects, arrays, null) is rejected at the boundary.
type ParamValue struct {
	kind    ParamKind
	number  float64
	str     string
	boolean bool
}

// Number wraps a float64 parameter value.
func Number(value float64) ParamValue {
	return ParamValue{kind: ParamKindNumber, number: value}
}

// String wraps a string parameter value.
func String(value string) ParamValue {
	return ParamValue{kind: ParamKindString, str: value}
}

// Bool wraps a bool parameter value.
func Bool(value bool) ParamValue {
	return ParamValue{kind: ParamKindBool, boolean: value}
}

// Kind returns the scalar kind of the value.
func (v ParamValue) Kind() ParamKind { return v.kind }

// Float64 returns the numeric value; zero for non-number kinds.
func (v ParamValue) Float64() float64 { return v.number }

// Str returns the string value; empty for non-string kinds.
func (v ParamValue) Str() string { return v.str }

// Boolean returns the bool value; false for non-bool kinds.
func (v ParamValue) Boolean() bool { return v.boolean }

// canonical renders the value for content hashing. The kind prefix keeps
// the string "8" and the number 8 from colliding.
func (v ParamValue) canonical() string {
	switch v.kind {
	case ParamKindString:
		return "s:" + v.str
	case ParamKindBool:
		return "b:" + strconv.FormatBool(v.boolean)
	default:
		return "n:" + strconv.FormatFloat(v.number, 'g', -1, 64)
	}
}

// MarshalJSON renders the raw scalar.
func (v ParamValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ParamKindString:
		return json.Marshal(v.str)
	case ParamKindBool:
		return json.Marshal(v.boolean)
	default:
		return json.Marshal(v.number)
	}
}

// UnmarshalJSON accepts a JSON number, string, or bool.
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperrors.Wrap(apperrors.CodePresetParametersInvalid, "parameter value is not valid JSON", err)
	}
	value, err := ParamValueOf(raw)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

// ParamValueOf converts a decoded JSON value to a ParamValue, rejecting
// non-scalar payloads.
func ParamValueOf(raw any) (ParamValue, error) {
	switch value := raw.(type) {
	case float64:
		return Number(value), nil
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return ParamValue{}, apperrors.Wrap(apperrors.CodePresetParametersInvalid, "parameter value is not a valid number", err)
		}
		return Number(parsed), nil
	case int:
		return Number(float64(value)), nil
	case string:
		return String(value), nil
	case bool:
		return Bool(value), nil
	default:
		return ParamValue{}, apperrors.Newf(apperrors.CodePresetParametersInvalid, "parameter value must be a number, string, or bool, got %T", raw)
	}
}

// Params maps parameter keys to scalar values.
type Params map[string]ParamValue

// ParamsOf converts a decoded JSON object to Params, rejecting non-scalar
// entries and naming the offending key.
func ParamsOf(raw map[string]any) (Params, error) {
	params := make(Params, len(raw))
	for key, value := range raw {
		converted, err := ParamValueOf(value)
		if err != nil {
			return nil, apperrors.Newf(apperrors.CodePresetParametersInvalid, "parameter %q: %v", key, err)
		}
		params[key] = converted
	}
	return params, nil
}

// Clone returns an independent copy of the parameter map.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = value
	}
	return clone
}

// SortedKeys returns the parameter keys in lexical order.
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GoString aids test failure output.
func (v ParamValue) GoString() string {
	return fmt.Sprintf("ParamValue(%s)", v.canonical())
}
