package main

import (
	"errors"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/matryer/try.v1"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/must"
	"github.com/dmarkez/muza/ratelimit"
	"github.com/dmarkez/muza/store"
)

func runSearch(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	term := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
	if term == "" {
		return cli.Exit("Search term is empty.", 1)
	}

	var songs []api.Song
	err = try.Do(func(attempt int) (retry bool, err error) {
		const maxAttempts = 3
		attemptRemained := attempt < maxAttempts
		if attempt > 1 {
			time.Sleep(ratelimit.RetrySleepMS())
		}
		songs, err = e.client.SearchSongs(ctx, term)
		if nil != err {
			switch {
			case errutil.IsContext(ctx):
				return false, ctx.Err()
			case errors.Is(err, api.ErrTooManyRequests):
				return attemptRemained, api.ErrTooManyRequests
			case errutil.IsFlaw(err):
				return false, must.BeFlaw(err)
			default:
				return false, err
			}
		}
		return false, nil
	})
	if nil != err {
		return err
	}

	if err := e.rememberSearch(term); nil != err {
		e.logger.Warn().Err(err).Msg("Failed to record recent search")
	}

	if len(songs) == 0 {
		e.logger.Info().Str("term", term).Msg("No songs matched")
		return nil
	}

	songs = e.enrich.Enrich(ctx, songs)
	for i, song := range songs {
		event := e.logger.Info().Int("position", i+1).Str("title", song.Title)
		if artist := song.ArtistName(); artist != "" {
			event = event.Str("artist", artist)
		}
		event.Msg("Search result")
	}
	return nil
}

func (e *env) rememberSearch(term string) error {
	f := e.state.Searches()
	history, err := f.Read()
	if nil != err {
		return err
	}
	return f.Write(store.PushRecent(history, term))
}
