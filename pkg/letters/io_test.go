package letters

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullStore = `{
  "letters": {
    "ب": {
      "letter": "ب",
      "name": "الباء",
      "articulation_point": "شفوي",
      "emotional_strength": 0.4,
      "similar_shape_letters": ["ت", "ث"],
      "developer_meanings": [
        {"meaning": "الاتصال <والربط>", "opposite": "الانفصال", "examples": [], "strength": 1.0, "relations": {}}
      ],
      "inferred_meanings": [],
      "confidence": 0.9
    }
  },
  "metadata": {"letters_count": 1, "last_updated": "2024-05-01T08:00:00", "version": 1.0, "source": "research"},
  "schema": "v1"
}`

func TestDecodeStore_PreservesUnknownFields(t *testing.T) {
	s, err := DecodeStore("store.json", []byte(fullStore))
	require.NoError(t, err)

	rec := s.Letters["ب"]
	require.NotNil(t, rec)
	assert.Equal(t, "الباء", rec.Name)
	assert.Equal(t, "1.0", s.Metadata.Version)
	assert.JSONEq(t, `"شفوي"`, string(rec.field("articulation_point")))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))

	// Only the version changes representation, from number to string.
	want := strings.Replace(fullStore, `"version": 1.0`, `"version": "1.0"`, 1)
	assert.JSONEq(t, want, buf.String())
}

// orderedStore is laid out the way Encode writes, with keys in neither
// byte nor alphabetical order.
const orderedStore = `{
  "metadata": {
    "version": "1.0",
    "letters_count": 2
  },
  "letters": {
    "ي": {
      "name": "الياء",
      "letter": "ي",
      "developer_meanings": [
        {
          "meaning": "تخصيص",
          "strength": 0.8,
          "examples": []
        }
      ]
    },
    "ا": {
      "letter": "ا",
      "shape_general": "<عمود>"
    }
  }
}
`

func TestEncode_KeepsDocumentOrder(t *testing.T) {
	s, err := DecodeStore("store.json", []byte(orderedStore))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	assert.Equal(t, orderedStore, buf.String())
}

func TestEncode_NewKeysAndLettersGoLast(t *testing.T) {
	base, err := DecodeStore("store.json", []byte(orderedStore))
	require.NoError(t, err)
	supp := &Supplement{Letters: map[string]SupplementLetter{
		"ي": {Meanings: []Candidate{{Text: "نداء"}}},
		"ب": {Name: "الباء", Meanings: []Candidate{{Text: "بيت"}}},
	}}
	merged, _, err := Merge(base, supp, MergeOptions{OnMissingLetter: MissingCreate, Now: fixedClock})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, merged))
	out := buf.String()

	inOrder := func(parts ...string) {
		t.Helper()
		rest := out
		for _, p := range parts {
			i := strings.Index(rest, p)
			require.GreaterOrEqual(t, i, 0, "%s missing or out of order", p)
			rest = rest[i+len(p):]
		}
	}
	inOrder(`"metadata"`, `"version": "1.1"`, `"letters_count": 3`, `"last_updated"`, `"notes"`, `"letters"`)
	inOrder(`"ي": {`, `"name": "الياء"`, `"letter": "ي"`, `"developer_meanings"`, `"تخصيص"`, `"نداء"`, `"last_updated"`, `"updated_by"`, `"ا": {`, `"ب": {`)
}

func TestEncode_Format(t *testing.T) {
	s, err := DecodeStore("store.json", []byte(fullStore))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	out := buf.String()

	assert.Contains(t, out, "الباء", "Arabic must be written literally")
	assert.NotContains(t, out, `\u`, "no unicode escapes expected")
	assert.Contains(t, out, "<والربط>", "HTML characters must not be escaped")
	assert.True(t, strings.HasPrefix(out, "{\n  \""), "two-space indentation expected")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestLoadStore_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "absent.json"), ErrInput},
		{"malformed json", write("bad.json", `{"letters": {`), ErrInput},
		{"missing letters", write("noletters.json", `{"metadata": {}}`), ErrSchema},
		{"missing metadata", write("nometa.json", `{"letters": {}}`), ErrSchema},
		{"letters not an object", write("array.json", `{"letters": [], "metadata": {}}`), ErrSchema},
		{"meaning not a string", write("meaning.json", `{"letters": {"ب": {"developer_meanings": [{"meaning": 3}]}}, "metadata": {}}`), ErrSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadStore(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadStore_MissingLettersMessage(t *testing.T) {
	_, err := DecodeStore("x.json", []byte(`{"metadata": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letters")
	assert.Contains(t, err.Error(), "x.json")
}

func TestLoadSupplement_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"missing letters", `{"metadata": {}}`, ErrSchema},
		{"missing meanings", `{"letters": {"ب": {"name": "باء"}}}`, ErrSchema},
		{"candidate without text", `{"letters": {"ب": {"meanings": [{"type": "primary"}]}}}`, ErrSchema},
		{"not json", `letters`, ErrInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSupplement("supp.json", []byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadSupplement_IgnoresExtraKeys(t *testing.T) {
	s, err := DecodeSupplement("supp.json", []byte(`{
		"source": "hurof.md",
		"letters": {"ب": {"name": "باء", "meanings": [{"meaning": "بيت", "type": "primary", "opposite": null}]}}
	}`))
	require.NoError(t, err)
	require.Len(t, s.Letters["ب"].Meanings, 1)
	assert.Equal(t, "بيت", s.Letters["ب"].Meanings[0].Text)
	assert.Nil(t, s.Letters["ب"].Meanings[0].Opposite)
}

func TestSaveStore_RoundTrip(t *testing.T) {
	s, err := DecodeStore("store.json", []byte(fullStore))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, SaveStore(path, s))

	back, err := LoadStore(path)
	require.NoError(t, err)
	a, err := json.Marshal(s)
	require.NoError(t, err)
	b, err := json.Marshal(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSaveStore_MissingDirectory(t *testing.T) {
	s := &Store{Letters: map[string]*Record{}}
	err := SaveStore(filepath.Join(t.TempDir(), "nope", "out.json"), s)
	assert.Error(t, err)
}

func TestWriteAtomic_FailureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.ts")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := WriteAtomic(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return errors.New("render failed")
	})
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "next")
		return err
	}))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "next", string(got))
}
