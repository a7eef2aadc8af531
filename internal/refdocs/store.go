package refdocs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"

	"github.com/joost-contentoo/korsit-portal/internal/models"
)

// ErrIO wraps every read or write failure of a document file.
var ErrIO = errors.New("reference document I/O failed")

// Store persists one reference document as a flat file. Writes replace the
// whole file atomically; concurrent writers resolve to the last rename.
type Store struct {
	kind models.DocumentKind
	path string
}

// NewStore returns a Store for kind backed by path. The file is created on first write.
func NewStore(kind models.DocumentKind, path string) *Store {
	return &Store{kind: kind, path: path}
}

// Kind names the document held by the store.
func (s *Store) Kind() models.DocumentKind { return s.kind }

// Path is the backing file.
func (s *Store) Path() string { return s.path }

// Read returns the document content, or "" when it has never been written.
func (s *Store) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: read %s: %v", ErrIO, s.kind, err)
	}
	return string(data), nil
}

// Write replaces the document content.
func (s *Store) Write(content string) error {
	if err := renameio.WriteFile(s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, s.kind, err)
	}
	return nil
}

// Library groups the stores by kind.
type Library map[models.DocumentKind]*Store

// NewLibrary builds the style guide and glossary stores.
func NewLibrary(styleGuidePath, glossaryPath string) Library {
	return Library{
		models.DocumentStyleGuide: NewStore(models.DocumentStyleGuide, styleGuidePath),
		models.DocumentGlossary:   NewStore(models.DocumentGlossary, glossaryPath),
	}
}
