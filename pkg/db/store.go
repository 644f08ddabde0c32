package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/baserah/letters/pkg/letters"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ErrNoSnapshots is returned when the archive is empty.
var ErrNoSnapshots = errors.New("no snapshots archived")

// SaveSnapshot archives s in a single transaction and returns the snapshot id.
func SaveSnapshot(conn *sql.DB, label string, s *letters.Store) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("store must be non-nil")
	}
	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(
		`INSERT INTO snapshots (label, version, letters_count, notes, store_updated_at) VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(label), s.Metadata.Version, len(s.Letters), s.Metadata.Notes, s.Metadata.LastUpdated,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, letter := range s.SortedLetters() {
		if err = insertLetter(tx, id, letter, s.Letters[letter]); err != nil {
			return 0, fmt.Errorf("archive letter %s: %w", letter, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func insertLetter(tx DBExecutor, snapshotID int64, letter string, rec *letters.Record) error {
	if rec == nil {
		rec = &letters.Record{}
	}
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	res, err := tx.Exec(
		`INSERT INTO snapshot_letters (snapshot_id, letter, name, last_updated, updated_by, record_json) VALUES (?, ?, ?, ?, ?, ?)`,
		snapshotID, letter, rec.Name, rec.LastUpdated, rec.UpdatedBy, string(recJSON),
	)
	if err != nil {
		return err
	}
	letterID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, m := range rec.Meanings {
		examples := m.Examples
		if examples == nil {
			examples = []string{}
		}
		exJSON, err := json.Marshal(examples)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshot_meanings (snapshot_letter_id, position, meaning, opposite, strength, examples) VALUES (?, ?, ?, ?, ?, ?)`,
			letterID, i, m.Text, nullableString(m.Opposite), m.Strength, string(exJSON),
		); err != nil {
			return err
		}
	}
	return nil
}

// nullableString returns nil for a missing opposite else the value.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// GetLatestSnapshot returns the most recently archived snapshot.
func GetLatestSnapshot(db DBExecutor) (Snapshot, error) {
	var s Snapshot
	err := db.QueryRow(`SELECT id, label, version, letters_count, notes, store_updated_at, created_at FROM snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&s.ID, &s.Label, &s.Version, &s.LettersCount, &s.Notes, &s.StoreUpdatedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNoSnapshots
	}
	return s, err
}

// ListSnapshots returns all snapshots, oldest first.
func ListSnapshots(db DBExecutor) ([]Snapshot, error) {
	rows, err := db.Query(`SELECT id, label, version, letters_count, notes, store_updated_at, created_at FROM snapshots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Label, &s.Version, &s.LettersCount, &s.Notes, &s.StoreUpdatedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshotLetters returns the letters archived in a snapshot, ordered by letter.
func GetSnapshotLetters(db DBExecutor, snapshotID int64) ([]SnapshotLetter, error) {
	if snapshotID <= 0 {
		return nil, fmt.Errorf("snapshotID must be positive")
	}
	rows, err := db.Query(`SELECT id, snapshot_id, letter, name, last_updated, updated_by, record_json FROM snapshot_letters WHERE snapshot_id = ? ORDER BY letter`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SnapshotLetter
	for rows.Next() {
		var l SnapshotLetter
		if err := rows.Scan(&l.ID, &l.SnapshotID, &l.Letter, &l.Name, &l.LastUpdated, &l.UpdatedBy, &l.RecordJSON); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshotMeanings returns the meanings of one letter in a snapshot, in stored order.
func GetSnapshotMeanings(db DBExecutor, snapshotID int64, letter string) ([]SnapshotMeaning, error) {
	if snapshotID <= 0 {
		return nil, fmt.Errorf("snapshotID must be positive")
	}
	rows, err := db.Query(`SELECT m.position, m.meaning, m.opposite, m.strength, m.examples
		FROM snapshot_meanings m
		JOIN snapshot_letters l ON l.id = m.snapshot_letter_id
		WHERE l.snapshot_id = ? AND l.letter = ?
		ORDER BY m.position`, snapshotID, letter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SnapshotMeaning
	for rows.Next() {
		var m SnapshotMeaning
		var opposite sql.NullString
		var examples string
		if err := rows.Scan(&m.Position, &m.Meaning, &opposite, &m.Strength, &examples); err != nil {
			return nil, err
		}
		if opposite.Valid {
			m.Opposite = opposite.String
		}
		if err := json.Unmarshal([]byte(examples), &m.Examples); err != nil {
			return nil, fmt.Errorf("decode examples: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
