// Package dict provides typed access to loosely structured configuration
// maps, such as a provider section decoded from TOML.
package dict

import (
	"fmt"
	"sort"
)

// Dicter is an abstraction over a configuration map.
type Dicter interface {
	String(key string, def *string) (string, error)
	StringSlice(key string) ([]string, error)
	Bool(key string, def *bool) (bool, error)
	Int(key string, def *int) (int, error)
	Float(key string, def *float64) (float64, error)
	Map(key string) (Dicter, error)
	MapSlice(key string) ([]Dicter, error)
	Interface(key string) (v interface{}, ok bool)
	Keys() []string
}

// ErrKeyRequired is returned when a key without a default is missing.
type ErrKeyRequired string

func (err ErrKeyRequired) Error() string {
	return fmt.Sprintf("required key %q not found", string(err))
}

// ErrKeyType is returned when a key holds a value of an unexpected type.
type ErrKeyType struct {
	Key   string
	Value interface{}
	T     string
}

func (err ErrKeyType) Error() string {
	return fmt.Sprintf("value (%v) of key %q is not of type %v", err.Value, err.Key, err.T)
}

// Dict is the map based Dicter.
type Dict map[string]interface{}

var _ Dicter = Dict{}

func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Dict) Interface(key string) (v interface{}, ok bool) {
	v, ok = d[key]
	return v, ok
}

func (d Dict) String(key string, def *string) (string, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return "", ErrKeyRequired(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrKeyType{Key: key, Value: v, T: "string"}
	}
	return s, nil
}

func (d Dict) StringSlice(key string) ([]string, error) {
	v, ok := d[key]
	if !ok || v == nil {
		// missing slices are empty slices
		return nil, nil
	}
	switch vs := v.(type) {
	case []string:
		return vs, nil
	case []interface{}:
		ss := make([]string, len(vs))
		for i := range vs {
			s, ok := vs[i].(string)
			if !ok {
				return nil, ErrKeyType{Key: key, Value: v, T: "[]string"}
			}
			ss[i] = s
		}
		return ss, nil
	}
	return nil, ErrKeyType{Key: key, Value: v, T: "[]string"}
}

func (d Dict) Bool(key string, def *bool) (bool, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return false, ErrKeyRequired(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, ErrKeyType{Key: key, Value: v, T: "bool"}
	}
	return b, nil
}

func (d Dict) Int(key string, def *int) (int, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return 0, ErrKeyRequired(key)
	}
	switch i := v.(type) {
	case int:
		return i, nil
	case int64:
		// toml decodes integers as int64
		return int(i), nil
	case int32:
		return int(i), nil
	}
	return 0, ErrKeyType{Key: key, Value: v, T: "int"}
}

func (d Dict) Float(key string, def *float64) (float64, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return 0, ErrKeyRequired(key)
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int:
		return float64(f), nil
	case int64:
		return float64(f), nil
	}
	return 0, ErrKeyType{Key: key, Value: v, T: "float64"}
}

func (d Dict) Map(key string) (Dicter, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return Dict{}, nil
	}
	switch m := v.(type) {
	case Dict:
		return m, nil
	case map[string]interface{}:
		return Dict(m), nil
	}
	return nil, ErrKeyType{Key: key, Value: v, T: "map[string]interface{}"}
}

func (d Dict) MapSlice(key string) ([]Dicter, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch ms := v.(type) {
	case []map[string]interface{}:
		ds := make([]Dicter, len(ms))
		for i := range ms {
			ds[i] = Dict(ms[i])
		}
		return ds, nil
	case []interface{}:
		ds := make([]Dicter, len(ms))
		for i := range ms {
			m, ok := ms[i].(map[string]interface{})
			if !ok {
				return nil, ErrKeyType{Key: key, Value: v, T: "[]map[string]interface{}"}
			}
			ds[i] = Dict(m)
		}
		return ds, nil
	}
	return nil, ErrKeyType{Key: key, Value: v, T: "[]map[string]interface{}"}
}
