package consumer

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/truemoder/truemoder/telegram"

	"github.com/prometheus/client_golang/prometheus"
)

// Scheduler is a parallel scheduler that will run work on a fixed number of workers.
//
// Work items sharing a key are handled in order, one at a time; items with distinct keys run concurrently. Handlers may block for a while (flood gate waits, pauses before sanctions), so the worker count bounds how many of those are in flight.
//
// The consumers in this package key by UpdateKey, so every update runs independently. Callers wanting per-chat or per-sender ordering pass their own key.
type Scheduler struct {
	maxConcurrency int

	ctx context.Context
	do  func(context.Context, *telegram.Update) error

	feeder chan *consumerTask
	out    chan struct{}

	lk     sync.Mutex
	active map[string][]*consumerTask

	ident string

	// metrics
	itemsAdded     prometheus.Counter
	itemsProcessed prometheus.Counter
	itemsActive    prometheus.Counter
	workesActive   prometheus.Gauge

	log *slog.Logger
}

// Handlers are called with ctx, which should be cancelled on shutdown to cut waits short.
func NewScheduler(ctx context.Context, maxC int, ident string, do func(context.Context, *telegram.Update) error) *Scheduler {
	if maxC < 1 {
		maxC = 1
	}
	p := &Scheduler{
		maxConcurrency: maxC,

		ctx: ctx,
		do:  do,

		feeder: make(chan *consumerTask),
		active: make(map[string][]*consumerTask),
		out:    make(chan struct{}),

		ident: ident,

		itemsAdded:     workItemsAdded.WithLabelValues(ident),
		itemsProcessed: workItemsProcessed.WithLabelValues(ident),
		itemsActive:    workItemsActive.WithLabelValues(ident),
		workesActive:   workersActive.WithLabelValues(ident),

		log: slog.Default().With("system", "parallel-scheduler"),
	}

	for i := 0; i < maxC; i++ {
		go p.worker()
	}

	p.workesActive.Set(float64(maxC))

	return p
}

// Scheduler key for an update handled on its own. Two messages from one sender may be handled concurrently; the flood gate and jail serialize whatever state they share.
func UpdateKey(upd *telegram.Update) string {
	return strconv.FormatInt(upd.UpdateID, 10)
}

// Blocks until every worker has finished its current work (and anything queued behind it under the same key).
func (p *Scheduler) Shutdown() {
	p.log.Info("shutting down parallel scheduler", "ident", p.ident)

	for i := 0; i < p.maxConcurrency; i++ {
		p.feeder <- &consumerTask{
			control: "stop",
		}
	}

	close(p.feeder)

	for i := 0; i < p.maxConcurrency; i++ {
		<-p.out
	}

	p.workesActive.Set(0)
	p.log.Info("parallel scheduler shutdown complete")
}

type consumerTask struct {
	key     string
	val     *telegram.Update
	control string
}

func (p *Scheduler) AddWork(ctx context.Context, key string, val *telegram.Update) error {
	p.itemsAdded.Inc()
	t := &consumerTask{
		key: key,
		val: val,
	}
	p.lk.Lock()

	a, ok := p.active[key]
	if ok {
		p.active[key] = append(a, t)
		p.lk.Unlock()
		return nil
	}

	p.active[key] = []*consumerTask{}
	p.lk.Unlock()

	select {
	case p.feeder <- t:
		return nil
	case <-ctx.Done():
		p.lk.Lock()
		delete(p.active, key)
		p.lk.Unlock()
		return ctx.Err()
	}
}

func (p *Scheduler) worker() {
	for work := range p.feeder {
		for work != nil {
			if work.control == "stop" {
				p.out <- struct{}{}
				return
			}

			p.itemsActive.Inc()
			if err := p.do(p.ctx, work.val); err != nil {
				p.log.Debug("update handler failed", "err", err, "key", work.key)
			}
			p.itemsProcessed.Inc()

			p.lk.Lock()
			rem, ok := p.active[work.key]
			if !ok {
				p.log.Error("should always have an 'active' entry if a worker is processing a job")
			}

			if len(rem) == 0 {
				delete(p.active, work.key)
				work = nil
			} else {
				work = rem[0]
				p.active[work.key] = rem[1:]
			}
			p.lk.Unlock()
		}
	}
}
