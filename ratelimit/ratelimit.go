package ratelimit

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const (
	EnrichFetchConcurrency  = 7
	LibraryLoadConcurrency  = 5
	EpisodeFetchConcurrency = 7
)

func RetrySleepMS() time.Duration {
	const (
		from = 1
		to   = 3
	)
	millis := (rand.IntN(to-from)+from)*1000 + rand.N(1000) //nolint:gosec
	return time.Duration(millis) * time.Millisecond
}

// Limiter caps the number of requests sent to the backend within a rolling
// interval. Callers block in Do until interval capacity frees up.
type Limiter struct {
	capacity        int32
	intervalTicker  *time.Ticker
	intervalCounter atomic.Int32
	sendLock        *sync.Mutex
	cancelTicker    context.CancelFunc
	done            chan struct{}
}

func NewLimiter(ctx context.Context, capacity int32, interval time.Duration) *Limiter {
	ctx, cancel := context.WithCancel(ctx)
	l := &Limiter{
		capacity:        capacity,
		intervalTicker:  time.NewTicker(interval),
		intervalCounter: atomic.Int32{},
		sendLock:        &sync.Mutex{},
		cancelTicker:    cancel,
		done:            make(chan struct{}),
	}

	go l.runTicker(ctx)
	return l
}

func (l *Limiter) runTicker(ctx context.Context) {
	defer func() { l.done <- struct{}{} }()
	for {
		select {
		case <-l.intervalTicker.C:
			l.intervalCounter.Store(0)
		case <-ctx.Done():
			return
		}
	}
}

func (l *Limiter) Close() {
	l.intervalTicker.Stop()
	l.cancelTicker()
	<-l.done
}

var errIntervalCapReached = errors.New("limiter interval capacity has reached, waiting for next interval")

func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := l.tryDo(fn); nil != err {
				if errors.Is(err, errIntervalCapReached) {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(50 * time.Millisecond):
					}
					continue
				}
				return err
			}
			return nil
		}
	}
}

func (l *Limiter) tryDo(fn func() error) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()

	if c := l.intervalCounter.Load(); l.capacity-c >= 1 {
		if err := fn(); nil != err {
			return err
		}
		l.intervalCounter.Add(1)
		return nil
	}
	return errIntervalCapReached
}
