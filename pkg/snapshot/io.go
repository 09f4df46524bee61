package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a snapshot as JSON to an io.Writer.
func Write(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a snapshot to a JSON file with 0644 permissions.
func WriteFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(s, f)
}

// Read decodes a JSON snapshot from an io.Reader.
func Read(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// ReadFile reads a JSON file and returns the decoded snapshot.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
