// Package kv provides the key-value stores the session manager persists to.
package kv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vburojevic/trk/internal/config"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is a synchronous string key-value store. Writes are durable when
// the call returns.
type Store interface {
	ReadString(key string) (string, bool, error)
	WriteString(key, value string) error
	RemoveKey(key string) error
}

// Op is a single write in a batch. Remove deletes Key and ignores Value.
type Op struct {
	Key    string
	Value  string
	Remove bool
}

// Put returns an Op that sets key to value
func Put(key, value string) Op { return Op{Key: key, Value: value} }

// Delete returns an Op that removes key
func Delete(key string) Op { return Op{Key: key, Remove: true} }

// BatchWriter is implemented by stores that can apply several writes
// atomically
type BatchWriter interface {
	WriteBatch(ops ...Op) error
}

// Apply writes ops to s, atomically when s implements BatchWriter
func Apply(s Store, ops ...Op) error {
	if bw, ok := s.(BatchWriter); ok {
		return bw.WriteBatch(ops...)
	}
	for _, op := range ops {
		var err error
		if op.Remove {
			err = s.RemoveKey(op.Key)
		} else {
			err = s.WriteString(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates the store described by cfg. The returned Closer releases it.
func Open(cfg config.StoreConfig) (Store, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "memory":
		return NewMemory(), nopCloser{}, nil
	case "file", "":
		path, err := expandPath(cfg.Path, "prefs."+fileExtension(cfg.Format))
		if err != nil {
			return nil, nil, err
		}
		f, err := OpenFile(path, Format(cfg.Format))
		if err != nil {
			return nil, nil, err
		}
		return f, nopCloser{}, nil
	case "sqlite":
		path, err := expandPath(cfg.Path, "prefs.db")
		if err != nil {
			return nil, nil, err
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

func fileExtension(format string) string {
	if Format(format) == FormatPlist {
		return "plist"
	}
	return "json"
}

// expandPath resolves ~ and falls back to ~/.trk/<name> when path is empty
func expandPath(path, name string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" && !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "" {
		return filepath.Join(home, ".trk", name), nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
