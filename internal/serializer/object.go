package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object that keeps keys in insertion order. Values are
// strings, ints, bools, nil, *Object, []*Object or []string.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

// Set adds or replaces key. A replaced key keeps its original position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present, even with a null value.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// String returns the string stored under key, or "".
func (o *Object) String(key string) string {
	s, _ := o.vals[key].(string)
	return s
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Each calls fn for every nested object, depth first, including o itself.
func (o *Object) Each(fn func(*Object)) {
	fn(o)
	for _, k := range o.keys {
		switch v := o.vals[k].(type) {
		case *Object:
			if v != nil {
				v.Each(fn)
			}
		case []*Object:
			for _, c := range v {
				c.Each(fn)
			}
		}
	}
}

// MarshalJSON writes the keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, fmt.Errorf("serializer: marshal %s: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
