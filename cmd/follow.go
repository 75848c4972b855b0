package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/session"
)

func followFlags() []cli.Flag {
	return []cli.Flag{
		//nolint:exhaustruct
		&cli.StringFlag{Name: flagKind, Aliases: []string{"k"}, Usage: "Entity kind: artist, album, podcast, playlist", Required: true},
		//nolint:exhaustruct
		&cli.Int64Flag{Name: flagID, Usage: "Entity identifier", Required: true},
	}
}

func parseFollowKind(s string) (api.FollowKind, error) {
	switch s {
	case "artist":
		return api.FollowArtist, nil
	case "album":
		return api.FollowAlbum, nil
	case "podcast":
		return api.FollowPodcast, nil
	case "playlist":
		return api.FollowPlaylist, nil
	default:
		return "", fmt.Errorf("unknown follow kind %q", s)
	}
}

func runFollow(cliCtx *cli.Context) error {
	return runFollowAction(cliCtx, true)
}

func runUnfollow(cliCtx *cli.Context) error {
	return runFollowAction(cliCtx, false)
}

func runFollowAction(cliCtx *cli.Context, follow bool) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	userID, err := e.session.UserID()
	if nil != err {
		if errors.Is(err, session.ErrLoggedOut) {
			return cli.Exit("Not logged in.", 1)
		}
		return err
	}

	kind, err := parseFollowKind(cliCtx.String(flagKind))
	if nil != err {
		return err
	}
	id := cliCtx.Int64(flagID)

	switch {
	case kind == api.FollowPlaylist && follow:
		err = e.client.FollowPlaylist(ctx, userID, id)
	case kind == api.FollowPlaylist:
		err = e.client.UnfollowPlaylist(ctx, userID, id)
	case follow:
		err = e.client.Follow(ctx, userID, kind, id)
	default:
		err = e.client.Unfollow(ctx, userID, kind, id)
	}
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return ctx.Err()
		case errors.Is(err, api.ErrNotFound):
			return cli.Exit("No such entity.", 1)
		case errors.Is(err, api.ErrTooManyRequests):
			return cli.Exit("Too many requests. Try again in a minute.", 1)
		case errors.Is(err, api.ErrUnauthorized):
			return cli.Exit("Session expired. Log in again.", 1)
		case errutil.IsFlaw(err), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			panic(errutil.UnknownError(err))
		}
	}

	action := "Followed"
	if !follow {
		action = "Unfollowed"
	}
	e.logger.Info().Str("kind", cliCtx.String(flagKind)).Int64("id", id).Msg(action)
	return nil
}
