package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/dmarkez/muza/api"
)

var DefaultSongTTL = 24 * time.Hour

type Cache struct {
	Songs SongsCache
}

func New() *Cache {
	songsCache := ccache.New(
		ccache.Configure[*api.Song]().
			MaxSize(5000).
			GetsPerPromote(3).
			ItemsToPrune(10),
	)

	return &Cache{
		Songs: SongsCache{
			c:   songsCache,
			mux: sync.Mutex{},
		},
	}
}

// SongsCache holds fully-populated song records keyed by song ID. A stored
// record is authoritative for its TTL; writes to the same key are
// last-writer-wins.
type SongsCache struct {
	c   *ccache.Cache[*api.Song]
	mux sync.Mutex
}

func (c *SongsCache) Get(id int64) (*api.Song, bool) {
	c.mux.Lock()
	defer c.mux.Unlock()
	item := c.c.Get(strconv.FormatInt(id, 10))
	if nil == item || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

func (c *SongsCache) Set(id int64, song *api.Song, ttl time.Duration) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.c.Set(strconv.FormatInt(id, 10), song, ttl)
}
