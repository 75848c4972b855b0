package library

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/dmarkez/muza/api"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPlaylists Filter = "playlists"
	FilterArtists   Filter = "artists"
	FilterAlbums    Filter = "albums"
	FilterPodcasts  Filter = "podcasts"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterPlaylists, FilterArtists, FilterAlbums, FilterPodcasts:
		return f, nil
	default:
		return "", fmt.Errorf("unknown library filter %q", s)
	}
}

type ItemKind int

const (
	KindLikedSongs ItemKind = iota
	KindPlaylist
	KindArtist
	KindAlbum
	KindPodcast
)

// Item is a display-only projection over the categories of the unified
// library view. Exactly one of the entity fields is set, matching Kind;
// KindLikedSongs carries only the saved-song count.
type Item struct {
	Kind            ItemKind
	LikedSongsCount int
	Playlist        *api.Playlist
	Artist          *api.Artist
	Album           *api.Album
	Podcast         *api.Podcast
}

func (i Item) Label() string {
	switch i.Kind {
	case KindLikedSongs:
		return "Liked Songs (" + strconv.Itoa(i.LikedSongsCount) + ")"
	case KindPlaylist:
		return i.Playlist.Title
	case KindArtist:
		return i.Artist.Name
	case KindAlbum:
		return i.Album.Title
	case KindPodcast:
		return i.Podcast.Name
	default:
		panic(fmt.Sprintf("unknown library item kind: %d", i.Kind))
	}
}

// Sources holds the independently-loaded collections the unified view is
// assembled from. A source that failed to load is represented by a nil slice
// and reads as empty.
type Sources struct {
	OwnedPlaylists    []api.Playlist
	FollowedPlaylists []api.Playlist
	Artists           []api.Artist
	Albums            []api.Album
	Podcasts          []api.Podcast
	SavedSongsCount   int
}

// DedupPlaylists merges owned and followed playlists into one sequence with
// each identifier appearing exactly once. The owned record wins when a
// playlist shows up in both sets; owned playlists keep their relative order
// and precede followed-only ones, which keep theirs.
func DedupPlaylists(owned, followed []api.Playlist) []api.Playlist {
	seen := make(map[int64]struct{}, len(owned)+len(followed))
	out := make([]api.Playlist, 0, len(owned)+len(followed))

	for _, p := range owned {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	for _, p := range followed {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Aggregate assembles the ordered library feed for the active filter:
// liked-songs marker and de-duplicated playlists, then artists, albums and
// podcasts, each category gated by the filter and kept in input order.
func Aggregate(src Sources, filter Filter) []Item {
	var items []Item

	if filter == FilterAll || filter == FilterPlaylists {
		items = append(items, Item{Kind: KindLikedSongs, LikedSongsCount: src.SavedSongsCount}) //nolint:exhaustruct
		playlists := DedupPlaylists(src.OwnedPlaylists, src.FollowedPlaylists)
		items = append(items, lo.Map(playlists, func(p api.Playlist, _ int) Item {
			return Item{Kind: KindPlaylist, Playlist: &p} //nolint:exhaustruct
		})...)
	}

	if filter == FilterAll || filter == FilterArtists {
		items = append(items, lo.Map(src.Artists, func(a api.Artist, _ int) Item {
			return Item{Kind: KindArtist, Artist: &a} //nolint:exhaustruct
		})...)
	}

	if filter == FilterAll || filter == FilterAlbums {
		items = append(items, lo.Map(src.Albums, func(a api.Album, _ int) Item {
			return Item{Kind: KindAlbum, Album: &a} //nolint:exhaustruct
		})...)
	}

	if filter == FilterAll || filter == FilterPodcasts {
		items = append(items, lo.Map(src.Podcasts, func(p api.Podcast, _ int) Item {
			return Item{Kind: KindPodcast, Podcast: &p} //nolint:exhaustruct
		})...)
	}

	return items
}
