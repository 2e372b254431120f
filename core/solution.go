package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Solution is an ordered mapping from attribute name to Value.
// Operations never mutate a Solution in place; With and Clone return copies.
type Solution struct {
	keys   []string
	values map[string]Value
}

// NewSolution builds a Solution from a Go map. Keys are ordered lexically
// since map iteration order carries no meaning.
func NewSolution(attrs map[string]any) (Solution, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := Solution{keys: keys, values: make(map[string]Value, len(attrs))}
	for _, k := range keys {
		v, err := ValueOf(attrs[k])
		if err != nil {
			return Solution{}, fmt.Errorf("attribute %q: %w", k, err)
		}
		s.values[k] = v
	}
	return s, nil
}

// MustSolution is NewSolution for literals.
func MustSolution(attrs map[string]any) Solution {
	s, err := NewSolution(attrs)
	if err != nil {
		panic(err)
	}
	return s
}

// SolutionOf builds a Solution from alternating key, value arguments,
// keeping the given order. A repeated key overwrites the earlier value.
func SolutionOf(kv ...any) Solution {
	if len(kv)%2 != 0 {
		panic("core.SolutionOf: odd number of arguments")
	}
	s := Solution{values: make(map[string]Value, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("core.SolutionOf: key %v is not a string", kv[i]))
		}
		s.set(key, MustValueOf(kv[i+1]))
	}
	return s
}

func (s *Solution) set(key string, v Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Get returns the value stored under key.
func (s Solution) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s Solution) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the attribute names in insertion order.
func (s Solution) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s Solution) Len() int { return len(s.keys) }

// With returns a copy of s with key set to v.
func (s Solution) With(key string, v Value) Solution {
	c := s.Clone()
	c.set(key, v)
	return c
}

func (s Solution) Clone() Solution {
	c := Solution{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]Value, len(s.values)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether both solutions hold the same attributes. Key order is ignored.
func (s Solution) Equal(o Solution) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for k, v := range s.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Fingerprint is a canonical, order-independent rendering used as a cache key.
// Keys and string values are quoted so separators inside them cannot collide.
func (s Solution) Fingerprint() string {
	keys := s.Keys()
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		v := s.values[k]
		fmt.Fprintf(&b, "%s=%s:%s", strconv.Quote(k), v.Kind(), v.String())
	}
	return b.String()
}

// Map returns the attributes as plain Go values.
func (s Solution) Map() map[string]any {
	out := make(map[string]any, len(s.keys))
	for k, v := range s.values {
		out[k] = v.Interface()
	}
	return out
}

func (s Solution) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", k, s.values[k].String())
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON writes the attributes as an object, in key order.
func (s Solution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping the document's key order.
func (s *Solution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("solution: expected JSON object")
	}

	out := Solution{values: map[string]Value{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("solution attribute %q: %w", key, err)
		}
		out.set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalYAML emits a mapping node so key order survives.
func (s Solution) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range s.keys {
		var vn yaml.Node
		if err := vn.Encode(s.values[k].Interface()); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&vn,
		)
	}
	return node, nil
}

func (s *Solution) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: solution must be a mapping", node.Line)
	}
	out := Solution{values: map[string]Value{}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v Value
		if err := v.UnmarshalYAML(node.Content[i+1]); err != nil {
			return fmt.Errorf("solution attribute %q: %w", node.Content[i].Value, err)
		}
		out.set(node.Content[i].Value, v)
	}
	*s = out
	return nil
}
