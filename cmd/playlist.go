package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/dmarkez/muza/api"
)

func playlistSongFlags() []cli.Flag {
	return []cli.Flag{
		//nolint:exhaustruct
		&cli.Int64Flag{Name: flagID, Usage: "Playlist identifier", Required: true},
		//nolint:exhaustruct
		&cli.Int64Flag{Name: flagSongID, Usage: "Song identifier", Required: true},
	}
}

func runPlaylistShow(cliCtx *cli.Context) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	id := cliCtx.Int64(flagID)
	playlist, err := e.client.Playlist(ctx, id)
	if nil != err {
		if errors.Is(err, api.ErrNotFound) {
			return cli.Exit("No such playlist.", 1)
		}
		return err
	}

	event := e.logger.Info().Int64("id", playlist.ID).Str("title", playlist.Title)
	if nil != playlist.Owner {
		event = event.Str("owner", playlist.Owner.Username)
	}
	if nil != playlist.SongCount {
		event = event.Int("song_count", *playlist.SongCount)
	}
	event.Msg("Playlist")

	songs, err := e.client.PlaylistSongs(ctx, id)
	if nil != err {
		return err
	}
	songs = e.enrich.Enrich(ctx, songs)
	for i, song := range songs {
		songEvent := e.logger.Info().Int("position", i+1).Str("title", song.Title)
		if artist := song.ArtistName(); artist != "" {
			songEvent = songEvent.Str("artist", artist)
		}
		songEvent.Msg("Playlist song")
	}
	return nil
}

func runPlaylistAdd(cliCtx *cli.Context) error {
	return runPlaylistSongAction(cliCtx, true)
}

func runPlaylistRemove(cliCtx *cli.Context) error {
	return runPlaylistSongAction(cliCtx, false)
}

func runPlaylistSongAction(cliCtx *cli.Context, add bool) error {
	ctx, cancel := signalCtx(cliCtx)
	defer cancel()

	e, closeEnv, err := newEnv(ctx, cliCtx)
	if nil != err {
		return err
	}
	defer closeEnv()
	defer e.close()

	playlistID := cliCtx.Int64(flagID)
	songID := cliCtx.Int64(flagSongID)
	if add {
		err = e.client.AddPlaylistSong(ctx, playlistID, songID)
	} else {
		err = e.client.RemovePlaylistSong(ctx, playlistID, songID)
	}
	if nil != err {
		if errors.Is(err, api.ErrNotFound) {
			return cli.Exit("No such playlist or song.", 1)
		}
		return err
	}

	action := "Added song to playlist"
	if !add {
		action = "Removed song from playlist"
	}
	e.logger.Info().Int64("playlist_id", playlistID).Int64("song_id", songID).Msg(action)
	return nil
}
