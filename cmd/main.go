package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/cache"
	"github.com/dmarkez/muza/config"
	"github.com/dmarkez/muza/constant"
	"github.com/dmarkez/muza/ctxutil"
	"github.com/dmarkez/muza/enrich"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/log"
	"github.com/dmarkez/muza/session"
	"github.com/dmarkez/muza/store"
)

const (
	flagConfigFilePath = "config"
	flagUsername       = "username"
	flagPassword       = "password"
	flagFilter         = "filter"
	flagKind           = "kind"
	flagID             = "id"
	flagSongID         = "song"
	flagPlaylistID     = "playlist"
	flagLiked          = "liked"
	flagShuffle        = "shuffle"
	flagRepeat         = "repeat"
)

func newLogger() zerolog.Logger {
	if os.Getenv("MUZA_LOG") == "packed" {
		return log.NewPacked(os.Stdout).Level(zerolog.TraceLevel)
	}
	return log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
}

func main() {
	logger := newLogger()
	defer func() {
		if r := recover(); nil != r {
			logger.Error().Func(log.Panic(r)).Msg("Application panicked")
			os.Exit(1)
		}
	}()

	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "muza",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "Headless music streaming client",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     flagConfigFilePath,
				Aliases:  []string{"c"},
				Usage:    "Config file path",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:   "login",
				Usage:  "Log into the streaming backend and persist the session",
				Action: runLogin,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{Name: flagUsername, Aliases: []string{"u"}, Usage: "Account username", Required: true},
					//nolint:exhaustruct
					&cli.StringFlag{Name: flagPassword, Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
			},
			//nolint:exhaustruct
			{
				Name:   "register",
				Usage:  "Create an account and persist the session",
				Action: runRegister,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{Name: flagUsername, Aliases: []string{"u"}, Usage: "Account username", Required: true},
					//nolint:exhaustruct
					&cli.StringFlag{Name: flagPassword, Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
			},
			//nolint:exhaustruct
			{
				Name:   "logout",
				Usage:  "Destroy the persisted session",
				Action: runLogout,
			},
			//nolint:exhaustruct
			{
				Name:   "whoami",
				Usage:  "Show the logged-in user",
				Action: runWhoami,
			},
			//nolint:exhaustruct
			{
				Name:   "library",
				Usage:  "Show the unified library feed",
				Action: runLibrary,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:    flagFilter,
						Aliases: []string{"f"},
						Usage:   "Category filter: all, playlists, artists, albums, podcasts (defaults to the last used one)",
					},
				},
			},
			//nolint:exhaustruct
			{
				Name:      "search",
				Usage:     "Search the song catalog",
				ArgsUsage: "<term>",
				Action:    runSearch,
			},
			//nolint:exhaustruct
			{
				Name:   "follow",
				Usage:  "Follow an artist, album, podcast or playlist",
				Action: runFollow,
				Flags:  followFlags(),
			},
			//nolint:exhaustruct
			{
				Name:   "unfollow",
				Usage:  "Unfollow an artist, album, podcast or playlist",
				Action: runUnfollow,
				Flags:  followFlags(),
			},
			//nolint:exhaustruct
			{
				Name:   "save",
				Usage:  "Save a song to the liked songs collection",
				Action: runSave,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.Int64Flag{Name: flagID, Usage: "Song identifier", Required: true},
				},
			},
			//nolint:exhaustruct
			{
				Name:   "unsave",
				Usage:  "Remove a song from the liked songs collection",
				Action: runUnsave,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.Int64Flag{Name: flagID, Usage: "Song identifier", Required: true},
				},
			},
			//nolint:exhaustruct
			{
				Name:  "playlist",
				Usage: "Inspect and edit a playlist",
				Subcommands: []*cli.Command{
					//nolint:exhaustruct
					{
						Name:   "show",
						Usage:  "Show a playlist and its songs",
						Action: runPlaylistShow,
						Flags: []cli.Flag{
							//nolint:exhaustruct
							&cli.Int64Flag{Name: flagID, Usage: "Playlist identifier", Required: true},
						},
					},
					//nolint:exhaustruct
					{
						Name:   "add",
						Usage:  "Add a song to a playlist",
						Action: runPlaylistAdd,
						Flags:  playlistSongFlags(),
					},
					//nolint:exhaustruct
					{
						Name:   "remove",
						Usage:  "Remove a song from a playlist",
						Action: runPlaylistRemove,
						Flags:  playlistSongFlags(),
					},
				},
			},
			//nolint:exhaustruct
			{
				Name:   "podcast",
				Usage:  "List the episodes of a podcast",
				Action: runPodcast,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.Int64Flag{Name: flagID, Usage: "Podcast identifier", Required: true},
				},
			},
			//nolint:exhaustruct
			{
				Name:   "play",
				Usage:  "Simulate playback of a playlist or the liked songs collection",
				Action: runPlay,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.Int64Flag{Name: flagPlaylistID, Usage: "Playlist to play"},
					//nolint:exhaustruct
					&cli.BoolFlag{Name: flagLiked, Usage: "Play the liked songs collection"},
					//nolint:exhaustruct
					&cli.BoolFlag{Name: flagShuffle, Usage: "Enable shuffle"},
					//nolint:exhaustruct
					&cli.StringFlag{Name: flagRepeat, Value: "off", Usage: "Repeat mode: off, all, one"},
				},
			},
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Error().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			if flawBytes, yamlErr := errutil.FlawToYAML(flawErr); nil == yamlErr {
				reportPath := filepath.Join(os.TempDir(), "muza-flaw.yaml")
				if writeErr := os.WriteFile(reportPath, flawBytes, 0o0600); nil == writeErr {
					logger.Info().Str("path", reportPath).Msg("Wrote failure report")
				}
			}
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

type env struct {
	cfg     *config.Config
	logger  zerolog.Logger
	state   store.StateDir
	session *session.Session
	client  *api.Client
	enrich  *enrich.Enricher
}

func (e *env) close() {
	e.client.Close()
}

// newEnv wires the per-command application context: config, state dir,
// session and API client. The client's request limiter lives on a delayed
// context so in-flight requests get a short grace window during shutdown.
func newEnv(ctx context.Context, cliCtx *cli.Context) (*env, context.CancelFunc, error) {
	logger := newLogger()

	var cfg *config.Config
	cfgFilePath := cliCtx.String(flagConfigFilePath)
	cfgEnv := os.Getenv("MUZA_CONFIG")
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath == "" && cfgEnv == "":
		return nil, nil, errors.New("config file path and config environment variable are both empty. specify one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		c, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, nil, fmt.Errorf("failed to load config file: %v", err)
		}
		cfg = c
	default:
		logger.Debug().Msg("Loading config from environment variable")
		c, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		cfg = c
	}

	stateDir, err := store.New(cfg.StateDir)
	if nil != err {
		return nil, nil, err
	}

	clientCtx, cancel := ctxutil.WithDelayedTimeout(ctx, 5*time.Second)
	client := api.New(clientCtx, cfg, logger.With().Str("module", "api").Logger())
	c := cache.New()

	e := &env{
		cfg:     cfg,
		logger:  logger,
		state:   stateDir,
		session: session.Load(stateDir, logger),
		client:  client,
		enrich:  enrich.New(c, client, logger.With().Str("module", "enrich").Logger()),
	}
	return e, cancel, nil
}

func signalCtx(cliCtx *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
}
