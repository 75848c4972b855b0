package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/dmarkez/muza/api"
)

func runPodcast(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	id := cliCtx.Int64(flagID)
	episodes, err := e.client.Episodes(ctx, id)
	if nil != err {
		if errors.Is(err, api.ErrNotFound) {
			return cli.Exit("No such podcast.", 1)
		}
		return err
	}

	if len(episodes) == 0 {
		e.logger.Info().Int64("podcast_id", id).Msg("Podcast has no episodes")
		return nil
	}
	for i, ep := range episodes {
		event := e.logger.Info().Int("position", i+1).Str("title", ep.Title)
		if nil != ep.Duration {
			event = event.Int("duration", *ep.Duration)
		}
		if nil != ep.PublishedAt {
			event = event.Str("published_at", *ep.PublishedAt)
		}
		event.Msg("Episode")
	}
	return nil
}
