package main

import (
	"errors"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dmarkez/muza/library"
	"github.com/dmarkez/muza/ratelimit"
	"github.com/dmarkez/muza/session"
)

func runLibrary(cliCtx *cli.Context) error {
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

	filter, err := e.resolveFilter(cliCtx.String(flagFilter))
	if nil != err {
		return err
	}

	// All sources load concurrently; the view renders only once every one of
	// them settled.
	var src library.Sources
	wg, loadCtx := errgroup.WithContext(ctx)
	wg.SetLimit(ratelimit.LibraryLoadConcurrency)
	wg.Go(func() (err error) {
		src.OwnedPlaylists, err = e.client.OwnedPlaylists(loadCtx, userID)
		return err
	})
	wg.Go(func() (err error) {
		src.FollowedPlaylists, err = e.client.FollowedPlaylists(loadCtx, userID)
		return err
	})
	wg.Go(func() (err error) {
		src.Artists, err = e.client.FollowedArtists(loadCtx, userID)
		return err
	})
	wg.Go(func() (err error) {
		src.Albums, err = e.client.FollowedAlbums(loadCtx, userID)
		return err
	})
	wg.Go(func() (err error) {
		src.Podcasts, err = e.client.FollowedPodcasts(loadCtx, userID)
		return err
	})
	wg.Go(func() error {
		saved, err := e.client.SavedSongs(loadCtx, userID)
		if nil != err {
			return err
		}
		src.SavedSongsCount = len(saved)
		return nil
	})
	if err := wg.Wait(); nil != err {
		return err
	}

	items := library.Aggregate(src, filter)
	if len(items) == 0 {
		e.logger.Info().Str("filter", string(filter)).Msg("Library is empty")
	}
	for i, item := range items {
		e.logger.Info().Int("position", i+1).Str("item", item.Label()).Msg("Library item")
	}

	if err := e.persistFilter(filter); nil != err {
		e.logger.Warn().Err(err).Msg("Failed to remember library filter")
	}
	return nil
}

// resolveFilter picks the active category filter: explicit flag first, then
// the last-used one from prefs, then the configured default.
func (e *env) resolveFilter(flagValue string) (library.Filter, error) {
	if flagValue != "" {
		return library.ParseFilter(flagValue)
	}

	prefs, err := e.state.Prefs().Read()
	if nil != err {
		return "", err
	}
	if prefs.LastLibraryFilter != "" {
		if f, err := library.ParseFilter(prefs.LastLibraryFilter); nil == err {
			return f, nil
		}
	}

	return library.ParseFilter(e.cfg.DefaultLibraryView)
}

func (e *env) persistFilter(filter library.Filter) error {
	prefs, err := e.state.Prefs().Read()
	if nil != err {
		return err
	}
	prefs.LastLibraryFilter = string(filter)
	return e.state.Prefs().Write(prefs)
}
