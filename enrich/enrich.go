package enrich

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/cache"
	"github.com/dmarkez/muza/ratelimit"
)

type SongFetcher interface {
	Song(ctx context.Context, id int64) (*api.Song, error)
}

// Enricher completes partial song records with their album/artist relation,
// backed by an in-memory cache keyed by song ID.
type Enricher struct {
	cache   *cache.Cache
	fetcher SongFetcher
	logger  zerolog.Logger
}

func New(c *cache.Cache, fetcher SongFetcher, logger zerolog.Logger) *Enricher {
	return &Enricher{
		cache:   c,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Enrich returns a one-to-one, order-preserving copy of songs with every
// incomplete record substituted by its fully-populated version. Complete
// records pass through untouched, cache hits substitute without network
// traffic, misses are fetched concurrently and stored. A failed fetch keeps
// the original record for that song only; the batch never fails.
func (e *Enricher) Enrich(ctx context.Context, songs []api.Song) []api.Song {
	out := make([]api.Song, len(songs))
	copy(out, songs)

	wg, fetchCtx := errgroup.WithContext(ctx)
	wg.SetLimit(ratelimit.EnrichFetchConcurrency)

	for i := range out {
		if out[i].IsComplete() {
			continue
		}

		if cached, ok := e.cache.Songs.Get(out[i].ID); ok {
			out[i] = *cached
			continue
		}

		wg.Go(func() error {
			full, err := e.fetcher.Song(fetchCtx, out[i].ID)
			if nil != err {
				e.logger.Warn().Err(err).Int64("song_id", out[i].ID).Msg("Failed to enrich song, keeping partial record")
				return nil
			}
			e.cache.Songs.Set(out[i].ID, full, cache.DefaultSongTTL)
			out[i] = *full
			return nil
		})
	}

	//nolint:errcheck // workers swallow their own failures
	_ = wg.Wait()
	return out
}
