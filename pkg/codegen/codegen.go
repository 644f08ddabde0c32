// Package codegen renders a letter store as TypeScript initialization code
// for the letter engine.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/baserah/letters/pkg/letters"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const initializerTemplate = "letter_initializer.ts.tmpl"

// maxExamples caps the example words emitted per meaning.
const maxExamples = 3

// DefaultOrder is the alphabet order the engine expects.
var DefaultOrder = []string{
	"ء", "آ", "ا", "ب", "ت", "ث", "ج", "ح", "خ", "د", "ذ", "ر", "ز", "س", "ش",
	"ص", "ض", "ط", "ظ", "ع", "غ", "ف", "ق", "ك", "ل", "م", "ن", "ه", "و", "ي",
}

var tmpl = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

type templateData struct {
	Letters []letterBlock
}

type letterBlock struct {
	Letter string
	Name   string
	Calls  []meaningCall
}

type meaningCall struct {
	Meaning  string
	Type     string
	Strength string
	Examples string
}

// Render writes the initializer for the letters of s listed in order and
// returns the number of lines written. Letters missing from s are skipped.
// A nil order means DefaultOrder.
func Render(w io.Writer, s *letters.Store, order []string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("render: nil store")
	}
	if order == nil {
		order = DefaultOrder
	}

	var data templateData
	for _, l := range order {
		rec, ok := s.Letters[l]
		if !ok || rec == nil {
			continue
		}
		block := letterBlock{Letter: l, Name: rec.Name}
		for i, m := range rec.Meanings {
			block.Calls = append(block.Calls, meaningCall{
				Meaning:  quote(m.Text),
				Type:     meaningType(i),
				Strength: formatStrength(m.Strength),
				Examples: formatExamples(m.Examples),
			})
		}
		data.Letters = append(data.Letters, block)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, initializerTemplate, data); err != nil {
		return 0, fmt.Errorf("execute template: %w", err)
	}
	lines := bytes.Count(buf.Bytes(), []byte("\n")) + 1
	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return lines, nil
}

// meaningType maps a meaning's position to the engine's MeaningType member.
func meaningType(i int) string {
	if i == 1 {
		return "SECONDARY"
	}
	return "PRIMARY"
}

// formatStrength always keeps a fractional part, so 1 renders as 1.0.
func formatStrength(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatExamples(ex []string) string {
	if len(ex) > maxExamples {
		ex = ex[:maxExamples]
	}
	quoted := make([]string, len(ex))
	for i, e := range ex {
		quoted[i] = "'" + quote(e) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote escapes text for a single-quoted TypeScript string.
func quote(s string) string {
	return quoteReplacer.Replace(s)
}
