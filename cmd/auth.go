package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/session"
)

func runLogin(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	username := cliCtx.String(flagUsername)
	if err := e.session.Login(ctx, e.client, username, cliCtx.String(flagPassword)); nil != err {
		return authCommandError(ctx, err)
	}

	e.logger.Info().Str("username", username).Msg("Logged in")
	return nil
}

func runRegister(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	username := cliCtx.String(flagUsername)
	if err := e.session.Register(ctx, e.client, username, cliCtx.String(flagPassword)); nil != err {
		return authCommandError(ctx, err)
	}

	e.logger.Info().Str("username", username).Msg("Account created and logged in")
	return nil
}

func authCommandError(ctx context.Context, err error) error {
	switch {
	case nil != ctx.Err():
		return ctx.Err()
	case errutil.IsFlaw(err):
		return err
	default:
		return cli.Exit(session.HumanizeAuthError(err), 1)
	}
}

func runLogout(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	if err := e.session.Logout(); nil != err {
		return err
	}
	e.logger.Info().Msg("Logged out")
	return nil
}

func runWhoami(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	user, err := e.session.User()
	if nil != err {
		if errors.Is(err, session.ErrLoggedOut) {
			return cli.Exit("Not logged in.", 1)
		}
		return err
	}

	e.logger.Info().
		Int64("id", user.ID).
		Str("username", user.Username).
		Str("email", user.Email).
		Str("plan", user.Plan).
		Msg("Session user")
	return nil
}
