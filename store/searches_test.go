package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkez/muza/store"
)

func TestPushRecent(t *testing.T) {
	t.Parallel()

	t.Run("prepends_new_term", func(t *testing.T) {
		t.Parallel()
		out := store.PushRecent([]string{"rock", "jazz"}, "salsa")
		assert.Equal(t, []string{"salsa", "rock", "jazz"}, out)
	})

	t.Run("case_insensitive_duplicate_moves_to_front", func(t *testing.T) {
		t.Parallel()
		out := store.PushRecent([]string{"rock", "Jazz", "salsa"}, "jazz")
		assert.Equal(t, []string{"jazz", "rock", "salsa"}, out)
	})

	t.Run("never_exceeds_max_oldest_evicted", func(t *testing.T) {
		t.Parallel()
		history := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
		out := store.PushRecent(history, "k")
		require.Len(t, out, store.MaxRecentSearches)
		assert.Equal(t, "k", out[0])
		assert.NotContains(t, out, "j", "oldest entry is evicted first")
	})

	t.Run("blank_term_ignored", func(t *testing.T) {
		t.Parallel()
		history := []string{"rock"}
		assert.Equal(t, history, store.PushRecent(history, "   "))
	})
}

func TestSearchesFileRoundTrip(t *testing.T) {
	t.Parallel()

	dir, err := store.New(t.TempDir())
	require.NoError(t, err)

	f := dir.Searches()

	terms, err := f.Read()
	require.NoError(t, err)
	assert.Empty(t, terms, "missing file reads as empty history")

	require.NoError(t, f.Write([]string{"salsa", "rock"}))
	terms, err = f.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"salsa", "rock"}, terms)
}

func TestSessionFileLifecycle(t *testing.T) {
	t.Parallel()

	dir, err := store.New(t.TempDir())
	require.NoError(t, err)

	f := dir.Session()

	_, err = f.Read()
	require.ErrorIs(t, err, os.ErrNotExist)

	content := store.SessionFileContent{UserID: 7, Username: "santi", Email: "santi@example.com", Plan: "premium"}
	require.NoError(t, f.Write(content))

	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, content, *got)

	require.NoError(t, f.Delete())
	_, err = f.Read()
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.NoError(t, f.Delete(), "deleting an absent session is not an error")
}

func TestCorruptSessionFileIsAnError(t *testing.T) {
	t.Parallel()

	dir, err := store.New(t.TempDir())
	require.NoError(t, err)

	path := filepath.Join(string(dir), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o0600))

	_, err = dir.Session().Read()
	assert.Error(t, err)
}

func TestPrefsFileFailsOpen(t *testing.T) {
	t.Parallel()

	dir, err := store.New(t.TempDir())
	require.NoError(t, err)

	f := dir.Prefs()

	prefs, err := f.Read()
	require.NoError(t, err)
	assert.Empty(t, prefs.LastLibraryFilter)

	require.NoError(t, f.Write(store.PrefsFileContent{LastLibraryFilter: "albums"}))
	prefs, err = f.Read()
	require.NoError(t, err)
	assert.Equal(t, "albums", prefs.LastLibraryFilter)

	path := filepath.Join(string(dir), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("####"), 0o0600))
	prefs, err = f.Read()
	require.NoError(t, err, "corrupt prefs read as zero-valued")
	assert.Empty(t, prefs.LastLibraryFilter)
}
