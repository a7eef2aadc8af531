package refdocs_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/joost-contentoo/korsit-portal/internal/models"
	"github.com/joost-contentoo/korsit-portal/internal/refdocs"
	"github.com/stretchr/testify/require"
)

func TestReadMissingIsEmpty(t *testing.T) {
	store := refdocs.NewStore(models.DocumentStyleGuide, filepath.Join(t.TempDir(), "style-guide.md"))

	content, err := store.Read()
	require.NoError(t, err)
	require.Empty(t, content)
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.md")
	store := refdocs.NewStore(models.DocumentGlossary, path)

	require.NoError(t, store.Write("booking = Buchung\n"))
	content, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, "booking = Buchung\n", content)

	require.NoError(t, store.Write(""))
	content, err = store.Read()
	require.NoError(t, err)
	require.Empty(t, content)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestConcurrentWritesLastWins(t *testing.T) {
	store := refdocs.NewStore(models.DocumentGlossary, filepath.Join(t.TempDir(), "glossary.md"))
	candidates := []string{"alpha", "beta", "gamma", "delta"}

	var wg sync.WaitGroup
	errs := make(chan error, len(candidates))
	for _, c := range candidates {
		wg.Add(1)
		go func(content string) {
			defer wg.Done()
			errs <- store.Write(content)
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	content, err := store.Read()
	require.NoError(t, err)
	require.Contains(t, candidates, content)
}

func TestIOErrors(t *testing.T) {
	dir := t.TempDir()
	store := refdocs.NewStore(models.DocumentStyleGuide, dir)

	_, err := store.Read()
	require.Error(t, err)
	require.True(t, errors.Is(err, refdocs.ErrIO))

	missingDir := refdocs.NewStore(models.DocumentStyleGuide, filepath.Join(dir, "nope", "style-guide.md"))
	err = missingDir.Write("x")
	require.Error(t, err)
	require.True(t, errors.Is(err, refdocs.ErrIO))
}

func TestNewLibrary(t *testing.T) {
	lib := refdocs.NewLibrary("a.md", "b.md")
	require.Len(t, lib, 2)
	require.Equal(t, "a.md", lib[models.DocumentStyleGuide].Path())
	require.Equal(t, models.DocumentGlossary, lib[models.DocumentGlossary].Kind())
}
