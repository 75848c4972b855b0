package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/session"
)

func runSave(cliCtx *cli.Context) error {
	return runSaveAction(cliCtx, true)
}

func runUnsave(cliCtx *cli.Context) error {
	return runSaveAction(cliCtx, false)
}

func runSaveAction(cliCtx *cli.Context, save bool) error {
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

	songID := cliCtx.Int64(flagID)
	if save {
		err = e.client.SaveSong(ctx, userID, songID)
	} else {
		err = e.client.UnsaveSong(ctx, userID, songID)
	}
	if nil != err {
		if errors.Is(err, api.ErrNotFound) {
			return cli.Exit("No such song.", 1)
		}
		return err
	}

	action := "Saved song"
	if !save {
		action = "Removed saved song"
	}
	e.logger.Info().Int64("id", songID).Msg(action)
	return nil
}
