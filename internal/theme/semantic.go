package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// SemanticRules maps semantic token selectors to styles and remembers the
// order in which selectors were inserted. The zero value is empty and ready
// to use.
type SemanticRules struct {
	keys   []string
	values map[string]SemanticValue
}

// Len returns the number of selectors.
func (r SemanticRules) Len() int {
	return len(r.keys)
}

// Keys returns the selectors in insertion order.
func (r SemanticRules) Keys() []string {
	return slices.Clone(r.keys)
}

// Get returns the value stored for a selector.
func (r SemanticRules) Get(key string) (SemanticValue, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the selector exists.
func (r SemanticRules) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Set stores a value. A new selector is appended at the end; an existing one
// keeps its position.
func (r *SemanticRules) Set(key string, v SemanticValue) {
	if r.values == nil {
		r.values = make(map[string]SemanticValue)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Delete removes a selector. Missing selectors are ignored.
func (r *SemanticRules) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	if i := slices.Index(r.keys, key); i >= 0 {
		r.keys = slices.Delete(r.keys, i, i+1)
	}
}

// Clone returns a copy that shares nothing with r.
func (r SemanticRules) Clone() SemanticRules {
	out := SemanticRules{keys: slices.Clone(r.keys)}
	if r.values != nil {
		out.values = make(map[string]SemanticValue, len(r.values))
		for k, v := range r.values {
			out.values[k] = v
		}
	}
	return out
}

// MarshalJSON writes the rules as an object with keys in insertion order.
func (r SemanticRules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("semantic rule %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the order of its keys. Anything
// other than an object yields no rules.
func (r *SemanticRules) UnmarshalJSON(data []byte) error {
	*r = SemanticRules{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading semantic selector: %w", err)
		}
		key, _ := tok.(string)
		var v SemanticValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("reading semantic rule %s: %w", key, err)
		}
		r.Set(key, v)
	}
	return nil
}
