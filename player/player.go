package player

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/mathutil"
)

type State int

const (
	StateIdle State = iota
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		panic(fmt.Sprintf("unknown player state: %d", int(s)))
	}
}

type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "off":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	default:
		return RepeatOff, fmt.Errorf("unknown repeat mode %q", s)
	}
}

// FallbackDurationSeconds stands in for a missing or malformed song duration
// so a progress fraction can always be computed.
const FallbackDurationSeconds = 210

// Player simulates playback of a song queue: a driver advances elapsed time
// once per second while playing, and reaching the duration either restarts
// the song (repeat one) or moves to the next queue entry. The driver is owned
// by the player: it is acquired on every entry into the playing state and
// released on every exit, so at most one driver is ever active.
type Player struct {
	mux          sync.Mutex
	state        State
	queue        []api.Song
	pos          int
	elapsed      int
	shuffle      bool
	repeat       RepeatMode
	tickInterval time.Duration
	tickerGen    uint64
	stopTicker   context.CancelFunc
	logger       zerolog.Logger
}

func New(logger zerolog.Logger) *Player {
	return NewWithTickInterval(logger, time.Second)
}

func NewWithTickInterval(logger zerolog.Logger, interval time.Duration) *Player {
	return &Player{ //nolint:exhaustruct
		state:        StateIdle,
		tickInterval: interval,
		logger:       logger,
	}
}

type Snapshot struct {
	State    State
	Song     *api.Song
	Elapsed  int
	Duration int
	Progress float64
	QueuePos int
	QueueLen int
}

func (p *Player) Now() Snapshot {
	p.mux.Lock()
	defer p.mux.Unlock()

	if p.state == StateIdle || len(p.queue) == 0 {
		return Snapshot{State: StateIdle} //nolint:exhaustruct
	}

	song := p.queue[p.pos]
	duration := durationOf(&song)
	return Snapshot{
		State:    p.state,
		Song:     &song,
		Elapsed:  p.elapsed,
		Duration: duration,
		Progress: mathutil.Clamp(float64(p.elapsed)/float64(duration), 0, 1),
		QueuePos: p.pos,
		QueueLen: len(p.queue),
	}
}

// PlayQueue replaces the queue and starts playing the entry at startIdx.
// Elapsed time resets to zero for the new song regardless of previous state.
func (p *Player) PlayQueue(songs []api.Song, startIdx int) error {
	if len(songs) == 0 {
		return errors.New("queue is empty")
	}
	if startIdx < 0 || startIdx >= len(songs) {
		return fmt.Errorf("start index %d out of queue bounds [0,%d)", startIdx, len(songs))
	}

	p.mux.Lock()
	defer p.mux.Unlock()

	p.queue = make([]api.Song, len(songs))
	copy(p.queue, songs)
	p.pos = startIdx
	p.elapsed = 0
	p.state = StatePlaying
	p.startTickerLocked()

	p.logger.Debug().Str("song", p.queue[p.pos].Title).Msg("Playback started")
	return nil
}

// TogglePause flips between playing and paused for the current song. It is a
// no-op with no current song.
func (p *Player) TogglePause() {
	p.mux.Lock()
	defer p.mux.Unlock()

	switch p.state {
	case StatePlaying:
		p.state = StatePaused
		p.releaseTickerLocked()
	case StatePaused:
		p.state = StatePlaying
		p.startTickerLocked()
	case StateIdle:
	}
}

func (p *Player) SetShuffle(on bool) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.shuffle = on
}

func (p *Player) SetRepeat(mode RepeatMode) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.repeat = mode
}

// Next skips to the next queue entry, applying shuffle and repeat the same
// way the end-of-song boundary does.
func (p *Player) Next() {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.state == StateIdle || len(p.queue) == 0 {
		return
	}
	p.advanceLocked()
}

// Close releases the driver and drops the queue.
func (p *Player) Close() {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.releaseTickerLocked()
	p.state = StateIdle
	p.queue = nil
	p.pos = 0
	p.elapsed = 0
}

// Tick advances simulated playback by one second. It is a no-op unless
// playing. The internal driver calls it once per interval; tests may call it
// directly.
func (p *Player) Tick() {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.tickLocked()
}

func (p *Player) tickLocked() {
	if p.state != StatePlaying || len(p.queue) == 0 {
		return
	}

	p.elapsed++
	song := p.queue[p.pos]
	if p.elapsed < durationOf(&song) {
		return
	}

	if p.repeat == RepeatOne {
		p.elapsed = 0
		return
	}
	p.advanceLocked()
}

// advanceLocked moves to the next queue entry. Reaching the end of the queue
// with repeat off stops playback: elapsed resets to zero, the position stays
// on the last song and the state becomes paused.
func (p *Player) advanceLocked() {
	p.elapsed = 0

	if p.shuffle && len(p.queue) > 1 {
		next := rand.IntN(len(p.queue) - 1) //nolint:gosec
		if next >= p.pos {
			next++
		}
		p.pos = next
		return
	}

	p.pos++
	if p.pos >= len(p.queue) {
		if p.repeat == RepeatAll {
			p.pos = 0
			return
		}
		p.pos = len(p.queue) - 1
		if p.state == StatePlaying {
			p.state = StatePaused
			p.releaseTickerLocked()
		}
		p.logger.Debug().Msg("Reached end of queue, stopping playback")
	}
}

// startTickerLocked acquires the driver, releasing any previous one first so
// no stale driver keeps advancing an old song.
func (p *Player) startTickerLocked() {
	p.releaseTickerLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p.stopTicker = cancel
	p.tickerGen++
	gen := p.tickerGen

	go p.runTicker(ctx, gen)
}

func (p *Player) releaseTickerLocked() {
	if nil != p.stopTicker {
		p.stopTicker()
		p.stopTicker = nil
	}
}

func (p *Player) runTicker(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mux.Lock()
			if p.tickerGen != gen {
				p.mux.Unlock()
				return
			}
			p.tickLocked()
			p.mux.Unlock()
		}
	}
}

func durationOf(song *api.Song) int {
	if nil == song.Duration || *song.Duration <= 0 {
		return FallbackDurationSeconds
	}
	return *song.Duration
}
