package db

import "time"

// Snapshot is one archived copy of a letter store.
type Snapshot struct {
	ID             int64
	Label          string
	Version        string
	LettersCount   int
	Notes          string
	StoreUpdatedAt string
	CreatedAt      time.Time
}

// SnapshotLetter is a letter record as it was when the snapshot was taken.
type SnapshotLetter struct {
	ID          int64
	SnapshotID  int64
	Letter      string
	Name        string
	LastUpdated string
	UpdatedBy   string
	RecordJSON  string
}

// SnapshotMeaning is one developer meaning of an archived letter.
type SnapshotMeaning struct {
	Position int
	Meaning  string
	Opposite string
	Strength float64
	Examples []string
}
