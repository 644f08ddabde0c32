package letters

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/baserah/letters/pkg/logging"
)

// DedupPolicy decides when a candidate meaning is already present.
type DedupPolicy string

const (
	// DedupSubstring drops a candidate whose text appears inside any
	// existing meaning's text.
	DedupSubstring DedupPolicy = "substring"
	// DedupExact drops a candidate only when an existing text is identical.
	DedupExact DedupPolicy = "exact"
)

// MissingLetterPolicy decides what happens to supplement letters the base
// store does not know.
type MissingLetterPolicy string

const (
	// MissingSkip ignores the letter and records it in MergeStats.
	MissingSkip MissingLetterPolicy = "skip"
	// MissingCreate inserts a new record for the letter.
	MissingCreate MissingLetterPolicy = "create"
)

const (
	// DefaultUpdatedBy is the provenance tag stamped on touched records.
	DefaultUpdatedBy = "hurof_md_integration"
	// DefaultMergeNotes describes the merge source in store metadata.
	DefaultMergeNotes = "تم دمج معاني الحروف من hurof.md (بحث 40 سنة)"
)

// MergeOptions configures Merge. Zero values select the defaults.
type MergeOptions struct {
	Dedup           DedupPolicy
	OnMissingLetter MissingLetterPolicy
	UpdatedBy       string
	Notes           string
	Now             func() time.Time
	Logger          *logging.Logger
}

func (o MergeOptions) withDefaults() MergeOptions {
	if o.Dedup == "" {
		o.Dedup = DedupSubstring
	}
	if o.OnMissingLetter == "" {
		o.OnMissingLetter = MissingSkip
	}
	if o.UpdatedBy == "" {
		o.UpdatedBy = DefaultUpdatedBy
	}
	if o.Notes == "" {
		o.Notes = DefaultMergeNotes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return o
}

// MergeStats summarises a merge run. It is informational and never persisted.
type MergeStats struct {
	LettersScanned  int
	LettersUpdated  int
	LettersCreated  int
	MeaningsAdded   int
	MeaningsSkipped int
	SkippedLetters  []string
}

// Contains reports whether text duplicates one of existing under the policy.
func (p DedupPolicy) Contains(existing []Meaning, text string) bool {
	for _, m := range existing {
		switch p {
		case DedupExact:
			if m.Text == text {
				return true
			}
		default:
			if strings.Contains(m.Text, text) {
				return true
			}
		}
	}
	return false
}

// Valid reports whether p is a known policy.
func (p DedupPolicy) Valid() bool { return p == DedupSubstring || p == DedupExact }

// Valid reports whether p is a known policy.
func (p MissingLetterPolicy) Valid() bool { return p == MissingSkip || p == MissingCreate }

// Merge folds the supplement's meanings into a copy of base and returns it.
// Neither input is modified.
func Merge(base *Store, supp *Supplement, opts MergeOptions) (*Store, MergeStats, error) {
	var stats MergeStats
	if base == nil {
		return nil, stats, errors.New("merge: nil base store")
	}
	if supp == nil {
		return nil, stats, errors.New("merge: nil supplement")
	}
	opts = opts.withDefaults()
	if !opts.Dedup.Valid() {
		return nil, stats, fmt.Errorf("merge: unknown dedup policy %q", opts.Dedup)
	}
	if !opts.OnMissingLetter.Valid() {
		return nil, stats, fmt.Errorf("merge: unknown missing-letter policy %q", opts.OnMissingLetter)
	}

	out := base.Clone()
	now := opts.Now()
	log := opts.Logger

	for _, letter := range slices.Sorted(maps.Keys(supp.Letters)) {
		entry := supp.Letters[letter]
		stats.LettersScanned++

		rec, ok := out.Letters[letter]
		created := false
		if !ok {
			if opts.OnMissingLetter == MissingSkip {
				stats.SkippedLetters = append(stats.SkippedLetters, letter)
				log.Warn("letter not in base store, skipping", map[string]interface{}{"letter": letter, "name": entry.Name})
				continue
			}
			rec = &Record{Letter: letter, Name: entry.Name}
			created = true
		}

		added := 0
		for _, c := range entry.Meanings {
			if opts.Dedup.Contains(rec.Meanings, c.Text) {
				stats.MeaningsSkipped++
				continue
			}
			rec.Meanings = append(rec.Meanings, NewMeaning(c.Text, c.Opposite))
			added++
		}
		stats.MeaningsAdded += added

		if created {
			if rec.Meanings == nil {
				rec.Meanings = []Meaning{}
			}
			rec.LastUpdated = Timestamp(now)
			rec.UpdatedBy = opts.UpdatedBy
			out.Letters[letter] = rec
			stats.LettersCreated++
			log.Info("letter created", map[string]interface{}{"letter": letter, "name": entry.Name, "added": added})
			continue
		}

		if added == 0 {
			log.Info("no new meanings", map[string]interface{}{"letter": letter, "name": entry.Name})
			continue
		}
		stats.LettersUpdated++
		rec.LastUpdated = Timestamp(now)
		rec.UpdatedBy = opts.UpdatedBy
		log.Info("meanings added", map[string]interface{}{"letter": letter, "name": entry.Name, "added": added})
	}

	if err := touchMetadata(out, now); err != nil {
		return nil, stats, err
	}
	out.Metadata.Notes = opts.Notes
	return out, stats, nil
}
