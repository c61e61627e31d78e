package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNotWrapped = errors.New("not a schema-wrapped value")

// ParseStringAs parses content into T.
//
// Primitive kinds (string, bool, signed and unsigned integers, floats) are
// converted directly. Everything else goes through JSON unmarshaling, with a
// jsonrepair pass and a schema-unwrapping pass as fallbacks for the malformed
// argument payloads models tend to produce.
//
// Example:
//
//	args, err := ParseStringAs[struct{ Expr string `json:"expresion"` }](`{expresion: '2+2'}`)
//	n, err := ParseStringAs[int](`{"type":"integer","value":3}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				content = unwrapped
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		err := setPrimitive(target, content)
		if err == nil {
			return result, nil
		}
		if unwrapped, unwrapErr := tryUnwrapPrimitive(content); unwrapErr == nil {
			if retryErr := setPrimitive(target, unwrapped); retryErr == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", target.Kind(), err)
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}
	if err = json.Unmarshal([]byte(repaired), &result); err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		if retryErr := json.Unmarshal([]byte(unwrapped), &result); retryErr == nil {
			return result, nil
		}
	}
	return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (original content: %s, repaired: %s)", result, err, content, repaired)
}

// ExtractArgument pulls a single named string argument out of a tool-call
// payload. It accepts a JSON object (repaired if necessary, code fences
// stripped) keyed by name, an object with exactly one string field, or a bare
// value that is not JSON at all, which is returned trimmed.
//
// The boolean result reports whether the payload was recognised as an object.
func ExtractArgument(raw, name string) (string, bool) {
	content := stripCodeFence(strings.TrimSpace(raw))
	if !strings.HasPrefix(content, "{") {
		if quoted, err := strconv.Unquote(content); err == nil {
			return strings.TrimSpace(quoted), false
		}
		return content, false
	}

	fields, err := ParseStringAs[map[string]any](content)
	if err != nil {
		return content, false
	}
	switch unwrapped := recursiveUnwrap(fields).(type) {
	case map[string]any:
		fields = unwrapped
	default:
		return stringify(unwrapped), true
	}

	if value, ok := lookupFold(fields, name); ok {
		return stringify(value), true
	}

	var only string
	count := 0
	for _, value := range fields {
		if s, ok := value.(string); ok {
			only = s
			count++
		}
	}
	if count == 1 {
		return strings.TrimSpace(only), true
	}
	return "", true
}

func lookupFold(fields map[string]any, name string) (any, bool) {
	if value, ok := fields[name]; ok {
		return value, true
	}
	for key, value := range fields {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func setPrimitive(target reflect.Value, content string) error {
	switch target.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(content)
		if err != nil {
			return err
		}
		target.SetBool(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(content, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetFloat(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(content, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetInt(v)
	default:
		v, err := strconv.ParseUint(content, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetUint(v)
	}
	return nil
}

// tryUnwrapPrimitive reads {"type": ..., "value": v} and returns v as text.
func tryUnwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}
	value, ok := schemaWrapped(data)
	if !ok {
		return "", errNotWrapped
	}
	if s, isString := value.(string); isString {
		return s, nil
	}
	return stringify(value), nil
}

func schemaWrapped(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	_, hasType := m["type"]
	value, hasValue := m["value"]
	return value, hasType && hasValue
}

// unwrapSchemaValues turns {"a": {"type": "string", "value": "x"}} into
// {"a": "x"} at any depth.
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}
	out, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := schemaWrapped(v); ok {
			return recursiveUnwrap(value)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = recursiveUnwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = recursiveUnwrap(val)
		}
		return out
	default:
		return data
	}
}
