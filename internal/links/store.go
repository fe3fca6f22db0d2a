package links

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/sundayezeilo/linkadmin/internal/errx"
)

// Persister loads and saves the full set of records.
type Persister interface {
	Load() (Records, error)
	Save(records Records) error
}

// FileStore keeps every record in a single JSON document on disk. Saves
// replace the document atomically, so readers see either the old or the new
// content and never a partial write.
type FileStore struct {
	path string
	perm os.FileMode
}

// NewFileStore returns a FileStore backed by the document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, perm: 0o644}
}

// Path returns the location of the document.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing or empty document is an empty set of
// records. Entries that are null or carry no URL are treated as absent.
func (s *FileStore) Load() (Records, error) {
	const op = "links.FileStore.Load"

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Records{}, nil
		}
		return nil, errx.E(op, errx.Storage, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Records{}, nil
	}

	var records Records
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errx.E(op, errx.Storage, fmt.Errorf("decode %s: %w", s.path, err))
	}
	if records == nil {
		return Records{}, nil
	}

	for slug, link := range records {
		if link.URL == "" {
			delete(records, slug)
			continue
		}
		if link.Hits < 0 {
			link.Hits = 0
		}
		records[slug] = link
	}
	return records, nil
}

// Save writes records to a temporary file next to the document and renames
// it into place.
func (s *FileStore) Save(records Records) error {
	const op = "links.FileStore.Save"

	if records == nil {
		records = Records{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errx.E(op, errx.Storage, fmt.Errorf("encode records: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errx.E(op, errx.Storage, err)
	}

	if err := renameio.WriteFile(s.path, data, s.perm); err != nil {
		return errx.E(op, errx.Storage, err)
	}
	return nil
}
