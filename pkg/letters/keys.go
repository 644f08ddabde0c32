package letters

import (
	"golang.org/x/text/unicode/norm"
)

// KeyIssue describes a suspicious letter key.
type KeyIssue struct {
	Letter  string
	Problem string
}

// CheckLetterKeys flags keys that are empty, not NFC-normalized, longer than
// one character segment, or that disagree with the record's letter field.
// The store is not modified.
func CheckLetterKeys(s *Store) []KeyIssue {
	var issues []KeyIssue
	for _, k := range s.SortedLetters() {
		if k == "" {
			issues = append(issues, KeyIssue{Letter: k, Problem: "empty key"})
			continue
		}
		if !norm.NFC.IsNormalString(k) {
			issues = append(issues, KeyIssue{Letter: k, Problem: "key is not NFC-normalized"})
		}
		if n := segments(k); n > 1 {
			issues = append(issues, KeyIssue{Letter: k, Problem: "key spans more than one character"})
		}
		if r := s.Letters[k]; r != nil && r.Letter != "" && r.Letter != k {
			issues = append(issues, KeyIssue{Letter: k, Problem: "record letter " + r.Letter + " does not match key"})
		}
	}
	return issues
}

// segments counts normalization segments: a base character plus its
// combining marks counts once.
func segments(s string) int {
	var it norm.Iter
	it.InitString(norm.NFC, s)
	n := 0
	for !it.Done() {
		it.Next()
		n++
	}
	return n
}
