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

// FollowedArtists lists artists the user follows. Not-found reads as the
// empty collection, as with every followed list.
func (c *Client) FollowedArtists(ctx context.Context, userID int64) ([]Artist, error) {
	body, err := c.followedList(ctx, userID, "artistasSeguidos")
	if nil != err {
		return nil, err
	}
	if nil == body {
		return nil, nil
	}

	var artists []Artist
	if err := json.Unmarshal(body, &artists); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode followed artists response: %v", err)).Append(flawP)
	}
	return artists, nil
}

func (c *Client) FollowedAlbums(ctx context.Context, userID int64) ([]Album, error) {
	body, err := c.followedList(ctx, userID, "albumesSeguidos")
	if nil != err {
		return nil, err
	}
	if nil == body {
		return nil, nil
	}

	var albums []Album
	if err := json.Unmarshal(body, &albums); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode followed albums response: %v", err)).Append(flawP)
	}
	return albums, nil
}

func (c *Client) followedList(ctx context.Context, userID int64, collection string) ([]byte, error) {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), collection)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build followed list URL: %v", err)).Append(flawP)
	}

	body, err := c.get(ctx, reqURL, config.GetFollowedListRequestTimeout)
	if nil != err {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return body, nil
}

type FollowKind string

const (
	FollowArtist   FollowKind = "artistasSeguidos"
	FollowAlbum    FollowKind = "albumesSeguidos"
	FollowPodcast  FollowKind = "podcastsSeguidos"
	FollowPlaylist FollowKind = "playlistsSeguidas"
)

func (c *Client) Follow(ctx context.Context, userID int64, kind FollowKind, id int64) error {
	reqURL, err := c.followedURL(userID, kind, id)
	if nil != err {
		return err
	}
	return c.mutate(ctx, http.MethodPut, reqURL, config.FollowRequestTimeout)
}

func (c *Client) Unfollow(ctx context.Context, userID int64, kind FollowKind, id int64) error {
	reqURL, err := c.followedURL(userID, kind, id)
	if nil != err {
		return err
	}
	return c.mutate(ctx, http.MethodDelete, reqURL, config.FollowRequestTimeout)
}

func (c *Client) followedURL(userID int64, kind FollowKind, id int64) (string, error) {
	reqURL, err := url.JoinPath(c.baseURL, "usuarios", strconv.FormatInt(userID, 10), string(kind), strconv.FormatInt(id, 10))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return "", flaw.From(fmt.Errorf("failed to build followed entity URL: %v", err)).Append(flawP)
	}
	return reqURL, nil
}
