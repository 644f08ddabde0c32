package letters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// object is a decoded JSON object that remembers the order its keys were
// written in.
type object struct {
	keys []string
	vals map[string]json.RawMessage
}

// member is a key/value pair handed to object.encode.
type member struct {
	key string
	val any
}

func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return object{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return object{}, errors.New("expected a JSON object")
	}
	o := object{vals: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return object{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return object{}, fmt.Errorf("unexpected token %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return object{}, err
		}
		// Last duplicate wins, as with encoding/json.
		if _, dup := o.vals[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.vals[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return object{}, err
	}
	return o, nil
}

// decoded reports whether o came from a document.
func (o object) decoded() bool { return o.vals != nil }

func (o object) clone() object {
	return object{keys: slices.Clone(o.keys), vals: maps.Clone(o.vals)}
}

// encode writes o with its keys in their original order. Members in set
// replace the value of an existing key in place; the others are appended in
// the order given.
func (o object) encode(set ...member) ([]byte, error) {
	idx := make(map[string]int, len(set))
	for i, m := range set {
		idx[m.key] = i
	}
	used := make([]bool, len(set))

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	put := func(key string, val any) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, err := marshalNoEscape(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if raw, ok := val.(json.RawMessage); ok {
			buf.Write(raw)
			return nil
		}
		v, err := marshalNoEscape(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		buf.Write(v)
		return nil
	}

	for _, k := range o.keys {
		val := any(o.vals[k])
		if i, ok := idx[k]; ok {
			used[i] = true
			val = set[i].val
		}
		if err := put(k, val); err != nil {
			return nil, err
		}
	}
	for i, m := range set {
		if used[i] {
			continue
		}
		if err := put(m.key, m.val); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
