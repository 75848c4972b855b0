package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/config"
	"github.com/dmarkez/muza/errutil"
)

type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type Album struct {
	ID     int64   `json:"id"`
	Title  string  `json:"titulo"`
	Year   *int    `json:"anyo,omitempty"`
	Artist *Artist `json:"artista,omitempty"`
}

type Song struct {
	ID        int64  `json:"id"`
	Title     string `json:"titulo"`
	Duration  *int   `json:"duracion,omitempty"`
	PlayCount *int64 `json:"numeroReproducciones,omitempty"`
	Album     *Album `json:"album,omitempty"`
}

// IsComplete reports whether the song already carries its album and artist
// relation. It is the single predicate deciding whether enrichment may skip
// the record.
func (s *Song) IsComplete() bool {
	return nil != s.Album && nil != s.Album.Artist && s.Album.Artist.Name != ""
}

func (s *Song) ArtistName() string {
	if nil != s.Album && nil != s.Album.Artist {
		return s.Album.Artist.Name
	}
	return ""
}

func (c *Client) Song(ctx context.Context, id int64) (*Song, error) {
	reqURL, err := url.JoinPath(c.baseURL, "canciones", strconv.FormatInt(id, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build song URL: %v", err)).Append(flawP)
	}

	body, err := c.get(ctx, reqURL, config.GetSongRequestTimeout)
	if nil != err {
		return nil, err
	}

	var song Song
	if err := json.Unmarshal(body, &song); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode song response: %v", err)).Append(flawP)
	}
	return &song, nil
}

// SavedSongs returns the session user's saved ("liked") songs. A not-found
// answer reads as an empty collection.
func (c *Client) SavedSongs(ctx context.Context, userID int64) ([]Song, error) {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), "cancionesGuardadas")
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build saved songs URL: %v", err)).Append(flawP)
	}

	body, err := c.get(ctx, reqURL, config.GetSavedSongsRequestTimeout)
	if nil != err {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var songs []Song
	if err := json.Unmarshal(body, &songs); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode saved songs response: %v", err)).Append(flawP)
	}
	return songs, nil
}

func (c *Client) SaveSong(ctx context.Context, userID, songID int64) error {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), "cancionesGuardadas", strconv.FormatInt(songID, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to build saved song URL: %v", err)).Append(flawP)
	}
	return c.mutate(ctx, http.MethodPut, reqURL, config.FollowRequestTimeout)
}

func (c *Client) UnsaveSong(ctx context.Context, userID, songID int64) error {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), "cancionesGuardadas", strconv.FormatInt(songID, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to build saved song URL: %v", err)).Append(flawP)
	}
	return c.mutate(ctx, http.MethodDelete, reqURL, config.FollowRequestTimeout)
}

// SearchSongs queries the catalog by free text.
func (c *Client) SearchSongs(ctx context.Context, term string) ([]Song, error) {
	reqURL, err := url.JoinPath(c.baseURL, "canciones")
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build search URL: %v", err)).Append(flawP)
	}
	reqURL += "?buscar=" + url.QueryEscape(term)

	body, err := c.get(ctx, reqURL, config.SearchRequestTimeout)
	if nil != err {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var songs []Song
	if err := json.Unmarshal(body, &songs); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode search response: %v", err)).Append(flawP)
	}
	return songs, nil
}
