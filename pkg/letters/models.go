// Package letters models Arabic letter-meaning stores and the operations that
// rewrite them: merging supplementary meanings, adding missing letters and
// checking documents before they are used.
package letters

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Meaning is one semantic association attached to a letter.
//
// Meanings decoded from a document keep their original field set so that a
// load/save cycle does not invent fields the author never wrote.
type Meaning struct {
	Text      string
	Opposite  *string
	Examples  []string
	Strength  float64
	Relations map[string]json.RawMessage

	raw object
}

// NewMeaning returns a meaning in the normalized shape used for appended entries.
func NewMeaning(text string, opposite *string) Meaning {
	return Meaning{
		Text:      text,
		Opposite:  opposite,
		Examples:  []string{},
		Strength:  1.0,
		Relations: map[string]json.RawMessage{},
	}
}

func (m *Meaning) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var fields struct {
		Text      string                     `json:"meaning"`
		Opposite  *string                    `json:"opposite"`
		Examples  []string                   `json:"examples"`
		Strength  *float64                   `json:"strength"`
		Relations map[string]json.RawMessage `json:"relations"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Meaning{
		Text:      fields.Text,
		Opposite:  fields.Opposite,
		Examples:  fields.Examples,
		Strength:  1.0,
		Relations: fields.Relations,
		raw:       raw,
	}
	if fields.Strength != nil {
		m.Strength = *fields.Strength
	}
	return nil
}

func (m Meaning) MarshalJSON() ([]byte, error) {
	if m.raw.decoded() {
		return m.raw.encode()
	}
	examples := m.Examples
	if examples == nil {
		examples = []string{}
	}
	relations := m.Relations
	if relations == nil {
		relations = map[string]json.RawMessage{}
	}
	return marshalNoEscape(struct {
		Text      string                     `json:"meaning"`
		Opposite  *string                    `json:"opposite"`
		Examples  []string                   `json:"examples"`
		Strength  float64                    `json:"strength"`
		Relations map[string]json.RawMessage `json:"relations"`
	}{m.Text, m.Opposite, examples, m.Strength, relations})
}

// Record is one letter's profile. Fields not modelled here are carried
// through unchanged.
type Record struct {
	Letter      string
	Name        string
	Meanings    []Meaning
	LastUpdated string
	UpdatedBy   string

	raw object
}

const (
	keyLetter      = "letter"
	keyName        = "name"
	keyMeanings    = "developer_meanings"
	keyLastUpdated = "last_updated"
	keyUpdatedBy   = "updated_by"
)

func (r *Record) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var fields struct {
		Letter      string    `json:"letter"`
		Name        string    `json:"name"`
		Meanings    []Meaning `json:"developer_meanings"`
		LastUpdated string    `json:"last_updated"`
		UpdatedBy   string    `json:"updated_by"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = Record{
		Letter:      fields.Letter,
		Name:        fields.Name,
		Meanings:    fields.Meanings,
		LastUpdated: fields.LastUpdated,
		UpdatedBy:   fields.UpdatedBy,
		raw:         raw,
	}
	return nil
}

// MarshalJSON keeps the record's original key order. Fields the record did
// not have before, such as a fresh updated_by, go at the end.
func (r Record) MarshalJSON() ([]byte, error) {
	var set []member
	if r.Letter != "" {
		set = append(set, member{keyLetter, r.Letter})
	}
	if r.Name != "" {
		set = append(set, member{keyName, r.Name})
	}
	if r.Meanings != nil {
		set = append(set, member{keyMeanings, r.Meanings})
	}
	if r.LastUpdated != "" {
		set = append(set, member{keyLastUpdated, r.LastUpdated})
	}
	if r.UpdatedBy != "" {
		set = append(set, member{keyUpdatedBy, r.UpdatedBy})
	}
	return r.raw.encode(set...)
}

// Clone returns a copy whose meaning slice can be appended to without
// touching r.
func (r *Record) Clone() *Record {
	c := *r
	c.Meanings = slices.Clone(r.Meanings)
	c.raw = r.raw.clone()
	return &c
}

// field returns a raw field as it was read, or nil.
func (r *Record) field(name string) json.RawMessage {
	return r.raw.vals[name]
}

// Metadata describes the store as a whole.
type Metadata struct {
	LettersCount int
	LastUpdated  string
	Version      string
	Notes        string

	raw object
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var fields struct {
		LettersCount int             `json:"letters_count"`
		LastUpdated  string          `json:"last_updated"`
		Version      json.RawMessage `json:"version"`
		Notes        string          `json:"notes"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Metadata{
		LettersCount: fields.LettersCount,
		LastUpdated:  fields.LastUpdated,
		Version:      versionText(fields.Version),
		Notes:        fields.Notes,
		raw:          raw,
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	set := []member{{"letters_count", m.LettersCount}}
	if m.LastUpdated != "" {
		set = append(set, member{"last_updated", m.LastUpdated})
	}
	if m.Version != "" {
		set = append(set, member{"version", m.Version})
	}
	if m.Notes != "" {
		set = append(set, member{"notes", m.Notes})
	}
	return m.raw.encode(set...)
}

// versionText accepts "1.0" as well as 1.0 and returns the textual form.
func versionText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Store is a full letter-store document.
type Store struct {
	Letters  map[string]*Record
	Metadata Metadata

	raw   object
	order []string
}

func (s *Store) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var fields struct {
		Letters  map[string]*Record `json:"letters"`
		Metadata Metadata           `json:"metadata"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields.Letters == nil {
		fields.Letters = map[string]*Record{}
	}
	var order []string
	if l, ok := raw.vals["letters"]; ok && string(l) != "null" {
		lo, err := decodeObject(l)
		if err != nil {
			return err
		}
		order = lo.keys
	}
	*s = Store{Letters: fields.Letters, Metadata: fields.Metadata, raw: raw, order: order}
	return nil
}

func (s Store) MarshalJSON() ([]byte, error) {
	letters, err := s.encodeLetters()
	if err != nil {
		return nil, err
	}
	return s.raw.encode(member{"letters", letters}, member{"metadata", s.Metadata})
}

// encodeLetters writes the letter map in document order. Letters added
// since the store was read follow in byte order.
func (s Store) encodeLetters() (json.RawMessage, error) {
	set := make([]member, 0, len(s.Letters))
	seen := make(map[string]bool, len(s.Letters))
	for _, k := range s.order {
		if r, ok := s.Letters[k]; ok && !seen[k] {
			seen[k] = true
			set = append(set, member{k, r})
		}
	}
	for _, k := range s.SortedLetters() {
		if !seen[k] {
			set = append(set, member{k, s.Letters[k]})
		}
	}
	return object{}.encode(set...)
}

// Clone deep-copies the letter map and each record.
func (s *Store) Clone() *Store {
	c := &Store{
		Letters:  make(map[string]*Record, len(s.Letters)),
		Metadata: s.Metadata,
		raw:      s.raw.clone(),
		order:    slices.Clone(s.order),
	}
	c.Metadata.raw = s.Metadata.raw.clone()
	for k, r := range s.Letters {
		if r == nil {
			c.Letters[k] = &Record{}
			continue
		}
		c.Letters[k] = r.Clone()
	}
	return c
}

// SortedLetters returns the letter keys in byte order.
func (s *Store) SortedLetters() []string {
	return slices.Sorted(maps.Keys(s.Letters))
}

// Candidate is a meaning offered by a supplement.
type Candidate struct {
	Text     string  `json:"meaning"`
	Type     string  `json:"type"`
	Opposite *string `json:"opposite,omitempty"`
}

// SupplementLetter is the supplement's view of one letter.
type SupplementLetter struct {
	Name     string      `json:"name"`
	Meanings []Candidate `json:"meanings"`
}

// Supplement is a secondary source of meanings keyed by letter.
type Supplement struct {
	Letters map[string]SupplementLetter `json:"letters"`
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
