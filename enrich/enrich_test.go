package enrich_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/cache"
	"github.com/dmarkez/muza/enrich"
	"github.com/dmarkez/muza/ptr"
)

type fakeFetcher struct {
	mux   sync.Mutex
	songs map[int64]*api.Song
	calls map[int64]int
}

func newFakeFetcher(songs ...*api.Song) *fakeFetcher {
	byID := make(map[int64]*api.Song, len(songs))
	for _, s := range songs {
		byID[s.ID] = s
	}
	return &fakeFetcher{
		mux:   sync.Mutex{},
		songs: byID,
		calls: make(map[int64]int),
	}
}

func (f *fakeFetcher) Song(_ context.Context, id int64) (*api.Song, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.calls[id]++
	if s, ok := f.songs[id]; ok {
		return s, nil
	}
	return nil, errors.New("song is gone")
}

func (f *fakeFetcher) totalCalls() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func completeSong(id int64, title, artist string) api.Song {
	return api.Song{
		ID:    id,
		Title: title,
		Album: &api.Album{
			ID:     id * 100,
			Title:  title + " - Single",
			Artist: &api.Artist{ID: id * 1000, Name: artist},
		},
	}
}

func partialSong(id int64, title string) api.Song {
	return api.Song{ID: id, Title: title, Duration: ptr.Of(180)}
}

func TestEnrichEmptyInput(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	e := enrich.New(cache.New(), fetcher, zerolog.Nop())

	out := e.Enrich(t.Context(), nil)
	assert.Empty(t, out)
	assert.Zero(t, fetcher.totalCalls())
}

func TestEnrichCompleteSongsPassThrough(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	e := enrich.New(cache.New(), fetcher, zerolog.Nop())

	in := []api.Song{
		completeSong(1, "Uno", "Primera"),
		completeSong(2, "Dos", "Segunda"),
	}
	out := e.Enrich(t.Context(), in)

	assert.Equal(t, in, out)
	assert.Zero(t, fetcher.totalCalls(), "complete records must not hit the network")
}

func TestEnrichFetchesSubstitutesAndPreservesOrder(t *testing.T) {
	t.Parallel()

	full := completeSong(2, "Dos", "Segunda")
	fetcher := newFakeFetcher(&full)
	e := enrich.New(cache.New(), fetcher, zerolog.Nop())

	in := []api.Song{
		completeSong(1, "Uno", "Primera"),
		partialSong(2, "Dos"),
		completeSong(3, "Tres", "Tercera"),
	}
	out := e.Enrich(t.Context(), in)

	require.Len(t, out, 3)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, full, out[1])
	assert.Equal(t, in[2], out[2])
	assert.Equal(t, 1, fetcher.totalCalls())
}

func TestEnrichSecondCallHitsCache(t *testing.T) {
	t.Parallel()

	full := completeSong(7, "Siete", "Septima")
	fetcher := newFakeFetcher(&full)
	e := enrich.New(cache.New(), fetcher, zerolog.Nop())

	in := []api.Song{partialSong(7, "Siete")}

	first := e.Enrich(t.Context(), in)
	require.Equal(t, full, first[0])
	require.Equal(t, 1, fetcher.totalCalls())

	second := e.Enrich(t.Context(), in)
	assert.Equal(t, full, second[0])
	assert.Equal(t, 1, fetcher.totalCalls(), "cached identifier must not be re-fetched")
}

func TestEnrichFailedFetchKeepsOriginal(t *testing.T) {
	t.Parallel()

	full := completeSong(1, "Uno", "Primera")
	fetcher := newFakeFetcher(&full)
	e := enrich.New(cache.New(), fetcher, zerolog.Nop())

	in := []api.Song{
		partialSong(1, "Uno"),
		partialSong(9, "Nueve"),
	}
	out := e.Enrich(t.Context(), in)

	require.Len(t, out, 2)
	assert.Equal(t, full, out[0])
	assert.Equal(t, in[1], out[1], "failed fetch must fall back to the partial record")
}
