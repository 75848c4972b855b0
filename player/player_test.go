package player_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/player"
	"github.com/dmarkez/muza/ptr"
)

func song(id int64, title string, duration int) api.Song {
	return api.Song{ID: id, Title: title, Duration: ptr.Of(duration)} //nolint:exhaustruct
}

// newManual returns a player whose internal driver never fires, so tests
// advance time by calling Tick directly.
func newManual(t *testing.T) *player.Player {
	t.Helper()
	p := player.NewWithTickInterval(zerolog.Nop(), time.Hour)
	t.Cleanup(p.Close)
	return p
}

func TestIdleSnapshot(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	now := p.Now()
	assert.Equal(t, player.StateIdle, now.State)
	assert.Nil(t, now.Song)
}

func TestPlayQueueValidation(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	assert.Error(t, p.PlayQueue(nil, 0))
	assert.Error(t, p.PlayQueue([]api.Song{song(1, "a", 10)}, 1))
	assert.Error(t, p.PlayQueue([]api.Song{song(1, "a", 10)}, -1))
}

func TestTickAdvancesElapsedAndProgress(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 4)}, 0))

	p.Tick()
	now := p.Now()
	assert.Equal(t, player.StatePlaying, now.State)
	assert.Equal(t, 1, now.Elapsed)
	assert.InDelta(t, 0.25, now.Progress, 1e-9)
}

func TestPlayDifferentSongResetsElapsed(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 100)}, 0))
	p.Tick()
	p.Tick()
	require.Equal(t, 2, p.Now().Elapsed)

	require.NoError(t, p.PlayQueue([]api.Song{song(2, "b", 100)}, 0))
	now := p.Now()
	assert.Equal(t, player.StatePlaying, now.State)
	assert.Equal(t, int64(2), now.Song.ID)
	assert.Zero(t, now.Elapsed)
}

func TestNoResidualDriverAfterSongChange(t *testing.T) {
	t.Parallel()

	p := player.NewWithTickInterval(zerolog.Nop(), 10*time.Millisecond)
	defer p.Close()

	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 1000)}, 0))
	assert.Eventually(t, func() bool { return p.Now().Elapsed > 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.PlayQueue([]api.Song{song(2, "b", 1000)}, 0))
	p.TogglePause()
	require.Equal(t, player.StatePaused, p.Now().State)

	elapsed := p.Now().Elapsed
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, elapsed, p.Now().Elapsed, "paused playback must not advance")
}

func TestTogglePauseStopsAndResumes(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 10)}, 0))

	p.TogglePause()
	require.Equal(t, player.StatePaused, p.Now().State)
	p.Tick()
	assert.Zero(t, p.Now().Elapsed, "ticks are ignored while paused")

	p.TogglePause()
	require.Equal(t, player.StatePlaying, p.Now().State)
	p.Tick()
	assert.Equal(t, 1, p.Now().Elapsed)
}

func TestRepeatOneRestartsSameSong(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 2), song(2, "b", 2)}, 0))
	p.SetRepeat(player.RepeatOne)

	p.Tick()
	p.Tick()

	now := p.Now()
	assert.Equal(t, player.StatePlaying, now.State)
	assert.Equal(t, int64(1), now.Song.ID)
	assert.Zero(t, now.Elapsed)
	assert.Zero(t, now.QueuePos)
}

func TestQueueAdvancesOnSongEnd(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 2), song(2, "b", 5)}, 0))

	p.Tick()
	p.Tick()

	now := p.Now()
	assert.Equal(t, player.StatePlaying, now.State)
	assert.Equal(t, int64(2), now.Song.ID)
	assert.Zero(t, now.Elapsed)
	assert.Equal(t, 1, now.QueuePos)
}

func TestRepeatAllWrapsToQueueStart(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 3), song(2, "b", 2)}, 1))
	p.SetRepeat(player.RepeatAll)

	p.Tick()
	p.Tick()

	now := p.Now()
	assert.Equal(t, player.StatePlaying, now.State)
	assert.Equal(t, int64(1), now.Song.ID)
	assert.Zero(t, now.QueuePos)
}

func TestEndOfQueueWithRepeatOffStopsPlayback(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{song(1, "a", 1)}, 0))

	p.Tick()

	now := p.Now()
	assert.Equal(t, player.StatePaused, now.State)
	assert.Equal(t, int64(1), now.Song.ID, "position stays on the last song")
	assert.Zero(t, now.Elapsed)
}

func TestShuffleNextStaysInQueue(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	songs := []api.Song{song(1, "a", 10), song(2, "b", 10), song(3, "c", 10)}
	require.NoError(t, p.PlayQueue(songs, 0))
	p.SetShuffle(true)

	for range 20 {
		before := p.Now().QueuePos
		p.Next()
		now := p.Now()
		require.Equal(t, player.StatePlaying, now.State)
		require.GreaterOrEqual(t, now.QueuePos, 0)
		require.Less(t, now.QueuePos, len(songs))
		require.NotEqual(t, before, now.QueuePos, "shuffle must pick a different entry")
		require.Zero(t, now.Elapsed)
	}
}

func TestMissingDurationFallsBack(t *testing.T) {
	t.Parallel()

	p := newManual(t)
	require.NoError(t, p.PlayQueue([]api.Song{{ID: 1, Title: "sin duracion"}}, 0)) //nolint:exhaustruct

	now := p.Now()
	assert.Equal(t, player.FallbackDurationSeconds, now.Duration)

	p.Tick()
	assert.InDelta(t, 1.0/player.FallbackDurationSeconds, p.Now().Progress, 1e-9)
}
