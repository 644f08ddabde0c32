package letters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LoadStore reads and validates a letter-store document.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, inputError(path, "read store", err)
	}
	return DecodeStore(path, data)
}

// DecodeStore parses an in-memory letter-store document.
func DecodeStore(path string, data []byte) (*Store, error) {
	if !json.Valid(data) {
		return nil, inputError(path, "invalid JSON", nil)
	}
	if err := ValidateStoreDocument(path, data); err != nil {
		return nil, err
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, schemaError(path, "decode store", err)
	}
	return &s, nil
}

// LoadSupplement reads and validates a supplement document.
func LoadSupplement(path string) (*Supplement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, inputError(path, "read supplement", err)
	}
	return DecodeSupplement(path, data)
}

// DecodeSupplement parses an in-memory supplement document.
func DecodeSupplement(path string, data []byte) (*Supplement, error) {
	if !json.Valid(data) {
		return nil, inputError(path, "invalid JSON", nil)
	}
	if err := ValidateSupplementDocument(path, data); err != nil {
		return nil, err
	}
	var s Supplement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, schemaError(path, "decode supplement", err)
	}
	return &s, nil
}

// Encode writes s as two-space indented JSON. Non-ASCII and HTML characters
// are written literally.
func Encode(w io.Writer, s *Store) error {
	compact, err := marshalNoEscape(s)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return fmt.Errorf("indent store: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// SaveStore writes s to path atomically.
func SaveStore(path string, s *Store) error {
	return WriteAtomic(path, func(w io.Writer) error { return Encode(w, s) })
}

// WriteAtomic calls write with a temporary file in path's directory and
// renames it into place once write succeeds. On failure path is untouched
// and the temporary file is removed.
func WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
