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

type PlaylistOwner struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Playlist struct {
	ID        int64          `json:"id"`
	Title     string         `json:"titulo"`
	Owner     *PlaylistOwner `json:"usuario,omitempty"`
	CreatedAt *string        `json:"fechaCreacion,omitempty"`
	SongCount *int           `json:"numeroCanciones,omitempty"`
}

// OwnedBy reports whether the playlist was created by the given user.
func (p *Playlist) OwnedBy(userID int64) bool {
	return nil != p.Owner && p.Owner.ID == userID
}

func (c *Client) Playlist(ctx context.Context, id int64) (*Playlist, error) {
	reqURL, err := url.JoinPath(c.baseURL, "playlists", strconv.FormatInt(id, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build playlist URL: %v", err)).Append(flawP)
	}

	body, err := c.get(ctx, reqURL, config.GetPlaylistRequestTimeout)
	if nil != err {
		return nil, err
	}

	var playlist Playlist
	if err := json.Unmarshal(body, &playlist); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode playlist response: %v", err)).Append(flawP)
	}
	return &playlist, nil
}

func (c *Client) PlaylistSongs(ctx context.Context, id int64) ([]Song, error) {
	reqURL, err := url.JoinPath(c.baseURL, "playlists", strconv.FormatInt(id, 10), "canciones")
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build playlist songs URL: %v", err)).Append(flawP)
	}

	body, err := c.get(ctx, reqURL, config.GetSongListRequestTimeout)
	if nil != err {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var songs []Song
	if err := json.Unmarshal(body, &songs); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode playlist songs response: %v", err)).Append(flawP)
	}
	return songs, nil
}

// OwnedPlaylists lists the playlists created by the user.
func (c *Client) OwnedPlaylists(ctx context.Context, userID int64) ([]Playlist, error) {
	return c.playlistList(ctx, userID, "playlists")
}

// FollowedPlaylists lists the playlists the user follows without owning.
func (c *Client) FollowedPlaylists(ctx context.Context, userID int64) ([]Playlist, error) {
	return c.playlistList(ctx, userID, "playlistsSeguidas")
}

func (c *Client) playlistList(ctx context.Context, userID int64, collection string) ([]Playlist, error) {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), collection)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build playlist list URL: %v", err)).Append(flawP)
	}

	body, err := c.get(ctx, reqURL, config.GetFollowedListRequestTimeout)
	if nil != err {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var playlists []Playlist
	if err := json.Unmarshal(body, &playlists); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode playlist list response: %v", err)).Append(flawP)
	}
	return playlists, nil
}

func (c *Client) FollowPlaylist(ctx context.Context, userID, playlistID int64) error {
	reqURL, err := c.followedPlaylistURL(userID, playlistID)
	if nil != err {
		return err
	}
	return c.mutate(ctx, http.MethodPut, reqURL, config.FollowRequestTimeout)
}

func (c *Client) UnfollowPlaylist(ctx context.Context, userID, playlistID int64) error {
	reqURL, err := c.followedPlaylistURL(userID, playlistID)
	if nil != err {
		return err
	}
	return c.mutate(ctx, http.MethodDelete, reqURL, config.FollowRequestTimeout)
}

func (c *Client) followedPlaylistURL(userID, playlistID int64) (string, error) {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), "playlistsSeguidas", strconv.FormatInt(playlistID, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return "", flaw.From(fmt.Errorf("failed to build followed playlist URL: %v", err)).Append(flawP)
	}
	return reqURL, nil
}

func (c *Client) AddPlaylistSong(ctx context.Context, playlistID, songID int64) error {
	reqURL, err := c.playlistSongURL(playlistID, songID)
	if nil != err {
		return err
	}
	return c.mutate(ctx, http.MethodPost, reqURL, config.PlaylistSongRequestTimeout)
}

func (c *Client) RemovePlaylistSong(ctx context.Context, playlistID, songID int64) error {
	reqURL, err := c.playlistSongURL(playlistID, songID)
	if nil != err {
		return err
	}
	return c.mutate(ctx, http.MethodDelete, reqURL, config.PlaylistSongRequestTimeout)
}

func (c *Client) playlistSongURL(playlistID, songID int64) (string, error) {
	reqURL, err := url.JoinPath(c.baseURL, "playlists", strconv.FormatInt(playlistID, 10), "canciones", strconv.FormatInt(songID, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return "", flaw.From(fmt.Errorf("failed to build playlist song URL: %v", err)).Append(flawP)
	}
	return reqURL, nil
}
