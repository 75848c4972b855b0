package config

import "time"

var (
	LoginRequestTimeout           = 10 * time.Second
	RegisterRequestTimeout        = 10 * time.Second
	GetSongRequestTimeout         = 5 * time.Second
	GetSongListRequestTimeout     = 5 * time.Second
	GetPlaylistRequestTimeout     = 5 * time.Second
	GetFollowedListRequestTimeout = 5 * time.Second
	GetSavedSongsRequestTimeout   = 5 * time.Second
	SearchRequestTimeout          = 5 * time.Second
	FollowRequestTimeout          = 5 * time.Second
	PlaylistSongRequestTimeout    = 5 * time.Second
	GetEpisodesRequestTimeout     = 5 * time.Second
)
