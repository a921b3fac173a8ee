package kv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"howett.net/plist"
)

// Format selects the on-disk encoding of a File store
type Format string

const (
	FormatJSON  Format = "json"
	FormatPlist Format = "plist"
)

// File is a Store backed by a single preferences file. The whole map is kept
// in memory and the file is rewritten atomically on every write.
type File struct {
	mu     sync.Mutex
	path   string
	format Format
	values map[string]string
}

// OpenFile loads the preferences file at path, creating an empty store when
// it does not exist yet. An empty format means JSON.
func OpenFile(path string, format Format) (*File, error) {
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatPlist:
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
	f := &File{path: path, format: format, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}
	if err := f.unmarshal(data); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}
	return f, nil
}

func (f *File) ReadString(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) WriteString(key, value string) error {
	return f.WriteBatch(Put(key, value))
}

func (f *File) RemoveKey(key string) error {
	return f.WriteBatch(Delete(key))
}

// WriteBatch applies ops and persists them with one rename. On failure the
// in-memory map is left unchanged.
func (f *File) WriteBatch(ops ...Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.values)+len(ops))
	for k, v := range f.values {
		next[k] = v
	}
	for _, op := range ops {
		if op.Remove {
			delete(next, op.Key)
		} else {
			next[op.Key] = op.Value
		}
	}
	if err := f.save(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *File) unmarshal(data []byte) error {
	if f.format == FormatPlist {
		_, err := plist.Unmarshal(data, &f.values)
		return err
	}
	return json.Unmarshal(data, &f.values)
}

func (f *File) marshal(values map[string]string) ([]byte, error) {
	if f.format == FormatPlist {
		return plist.MarshalIndent(values, plist.XMLFormat, "\t")
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// save writes values using a temp-file-then-rename so a crash never leaves a
// half-written file behind
func (f *File) save(values map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	data, err := f.marshal(values)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("renaming preferences file: %w", err)
	}
	committed = true
	return nil
}
