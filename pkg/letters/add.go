package letters

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baserah/letters/pkg/logging"
)

//go:embed seed/missing_letters.json
var seedJSON []byte

// SeedRecords returns the hand-authored records for letters that older
// stores lack (the hamza and the madda alif).
func SeedRecords() ([]*Record, error) {
	var recs []*Record
	if err := json.Unmarshal(seedJSON, &recs); err != nil {
		return nil, fmt.Errorf("decode seed records: %w", err)
	}
	return recs, nil
}

// AddOptions configures AddLetters.
type AddOptions struct {
	UpdatedBy string
	Now       func() time.Time
	Logger    *logging.Logger
}

// AddLetters returns a copy of s with every record in recs whose letter is
// not yet present. Existing letters are left alone. The returned slice lists
// the letters that were inserted.
func AddLetters(s *Store, recs []*Record, opts AddOptions) (*Store, []string, error) {
	if s == nil {
		return nil, nil, errors.New("add letters: nil store")
	}
	if opts.UpdatedBy == "" {
		opts.UpdatedBy = DefaultUpdatedBy
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	out := s.Clone()
	now := opts.Now()
	var added []string
	for _, r := range recs {
		if r == nil || r.Letter == "" {
			return nil, nil, errors.New("add letters: record without a letter")
		}
		if _, ok := out.Letters[r.Letter]; ok {
			opts.Logger.Debug("letter already present", map[string]interface{}{"letter": r.Letter})
			continue
		}
		c := r.Clone()
		c.LastUpdated = Timestamp(now)
		c.UpdatedBy = opts.UpdatedBy
		out.Letters[r.Letter] = c
		added = append(added, r.Letter)
		opts.Logger.Info("letter added", map[string]interface{}{"letter": r.Letter, "name": r.Name})
	}

	if err := touchMetadata(out, now); err != nil {
		return nil, nil, err
	}
	return out, added, nil
}
