// Package poller re-fetches remote state on a fixed interval for a screen.
//
// A Poller fetches once when it starts and then on every tick. A tick is
// skipped while the screen is paused or while the previous fetch is still in
// flight. Refresh and Resume start a fetch immediately, so two fetches can
// overlap; every fetch carries a sequence number and a response older than the
// newest delivered one is dropped, so a slow early response never overwrites
// fresher data. Delivery happens on the Run goroutine, one result at a time.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Seq   uint64
	Value T
	Err   error
}

type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]

	paused  *atomic.Bool
	seq     *atomic.Uint64
	refresh chan struct{}
	resume  chan struct{}
}

func New[T any](name string, interval time.Duration, fetch FetchFunc[T]) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		paused:   atomic.NewBool(false),
		seq:      atomic.NewUint64(0),
		refresh:  make(chan struct{}, 1),
		resume:   make(chan struct{}, 1),
	}
}

// Pause stops tick-driven fetches, e.g. while the screen is in the background.
func (p *Poller[T]) Pause() {
	p.paused.Store(true)
}

// Resume re-enables ticks and fetches right away.
func (p *Poller[T]) Resume() {
	if p.paused.CAS(true, false) {
		select {
		case p.resume <- struct{}{}:
		default:
		}
	}
}

func (p *Poller[T]) Paused() bool {
	return p.paused.Load()
}

// Refresh asks for an immediate fetch, e.g. after a mutation.
func (p *Poller[T]) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done. Every in-flight fetch is cancelled before it returns.
func (p *Poller[T]) Run(ctx context.Context, deliver func(Result[T])) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log := logrus.WithField("poller", p.name)
	results := make(chan Result[T])
	inflight := make(map[uint64]context.CancelFunc)
	var delivered uint64

	start := func() {
		seq := p.seq.Inc()
		fctx, fcancel := context.WithCancel(ctx)
		inflight[seq] = fcancel
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.fetch(fctx)
			select {
			case results <- Result[T]{Seq: seq, Value: v, Err: err}:
			case <-ctx.Done():
			}
		}()
	}

	if !p.paused.Load() {
		start()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.paused.Load() || len(inflight) > 0 {
				continue
			}
			start()
		case <-p.refresh:
			start()
		case <-p.resume:
			start()
		case res := <-results:
			if c, ok := inflight[res.Seq]; ok {
				c()
				delete(inflight, res.Seq)
			}
			if res.Seq < delivered {
				log.WithField("seq", res.Seq).Debug("dropping superseded response")
				continue
			}
			delivered = res.Seq
			for seq, c := range inflight {
				if seq < res.Seq {
					c()
					delete(inflight, seq)
				}
			}
			deliver(res)
		}
	}
}
