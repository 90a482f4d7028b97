package settings

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// The typed accessors resolve a key and coerce its value. The optional
// default applies only when the key is absent; a present value that cannot
// be coerced is an error, never a silent fallback.

// GetBool reads a boolean setting. Booleans pass through; numbers are true
// when non-zero; the strings "1", "true" and "yes" are true and "0",
// "false" and "no" are false, case-insensitively. Anything else fails with
// ErrInvalidBool.
func (s *Settings) GetBool(key string, def ...bool) (bool, error) {
	v := s.Get(key)
	if v == nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return false, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes":
			return true, nil
		case "0", "false", "no":
			return false, nil
		}
		return false, fmt.Errorf("%w: setting %q has value %q; supported values are 1/0, true/false and yes/no", ErrInvalidBool, key, t)
	default:
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return false, fmt.Errorf("%w: setting %q has value %v (%T)", ErrInvalidBool, key, v, v)
		}
		return n != 0, nil
	}
}

// GetInt reads an integer setting, coercing numbers and numeric strings.
func (s *Settings) GetInt(key string, def ...int) (int, error) {
	v := s.Get(key)
	if v == nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: setting %q: %v", ErrInvalidNumber, key, err)
	}
	return n, nil
}

// GetFloat reads a float setting, coercing numbers and numeric strings.
func (s *Settings) GetFloat(key string, def ...float64) (float64, error) {
	v := s.Get(key)
	if v == nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, nil
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: setting %q: %v", ErrInvalidNumber, key, err)
	}
	return n, nil
}

// GetList reads a sequence setting. Stored sequences are materialized as a
// fresh slice; a string value is split on commas. An absent key yields the
// default, or an empty slice if none was given.
func (s *Settings) GetList(key string, def ...[]any) ([]any, error) {
	v := s.Get(key)
	if v == nil {
		if len(def) > 0 && def[0] != nil {
			return append([]any(nil), def[0]...), nil
		}
		return []any{}, nil
	}
	switch t := v.(type) {
	case string:
		parts := strings.Split(t, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	case []any:
		return append([]any(nil), t...), nil
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("%w: setting %q is not a sequence (%T)", ErrInvalidList, key, v)
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
}

// GetDict reads a mapping setting as a plain key-value snapshot. Nested
// settings trees degrade to plain maps, recursively, discarding priority
// metadata. A string value is parsed as a JSON object; decoding failures,
// non-object JSON and non-mapping values (a flat sequence, for example)
// fail with ErrInvalidDict.
func (s *Settings) GetDict(key string, def ...map[string]any) (map[string]any, error) {
	v := s.Get(key)
	if v == nil {
		if len(def) > 0 && def[0] != nil {
			out := make(map[string]any, len(def[0]))
			for k, e := range def[0] {
				out[k] = e
			}
			return out, nil
		}
		return map[string]any{}, nil
	}
	switch t := v.(type) {
	case *Settings:
		return t.CopyToDict(), nil
	case string:
		return decodeJSONObject(t)
	default:
		if m, ok := toStringAnyMap(v); ok {
			return m, nil
		}
		return nil, fmt.Errorf("%w: setting %q cannot be read as a mapping (%T)", ErrInvalidDict, key, v)
	}
}
