package main

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/player"
	"github.com/dmarkez/muza/session"
)

func runPlay(cliCtx *cli.Context) error {
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

	repeat, err := player.ParseRepeatMode(cliCtx.String(flagRepeat))
	if nil != err {
		return err
	}

	var songs []api.Song
	switch {
	case cliCtx.Bool(flagLiked):
		songs, err = e.client.SavedSongs(ctx, userID)
	case cliCtx.Int64(flagPlaylistID) != 0:
		songs, err = e.client.PlaylistSongs(ctx, cliCtx.Int64(flagPlaylistID))
	default:
		return cli.Exit("Specify --playlist or --liked.", 1)
	}
	if nil != err {
		if ctxErr, ok := errutil.IsAny(err, context.Canceled, context.DeadlineExceeded); ok {
			return ctxErr
		}
		if errors.Is(err, api.ErrNotFound) {
			return cli.Exit("No such playlist.", 1)
		}
		return err
	}
	if len(songs) == 0 {
		return cli.Exit("Nothing to play.", 1)
	}

	songs = e.enrich.Enrich(ctx, songs)

	p := player.New(e.logger.With().Str("module", "player").Logger())
	defer p.Close()
	p.SetShuffle(cliCtx.Bool(flagShuffle))
	p.SetRepeat(repeat)
	if err := p.PlayQueue(songs, 0); nil != err {
		return err
	}

	// Render loop only: the player owns the 1-second driver that advances
	// simulated playback.
	renderTicker := time.NewTicker(time.Second)
	defer renderTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-renderTicker.C:
			now := p.Now()
			if now.State != player.StatePlaying {
				e.logger.Info().Msg("Playback finished")
				return nil
			}
			event := e.logger.Info().
				Str("title", now.Song.Title).
				Int("elapsed", now.Elapsed).
				Int("duration", now.Duration).
				Float64("progress", now.Progress).
				Int("queue_position", now.QueuePos+1).
				Int("queue_length", now.QueueLen)
			if artist := now.Song.ArtistName(); artist != "" {
				event = event.Str("artist", artist)
			}
			event.Msg("Playing")
		}
	}
}
