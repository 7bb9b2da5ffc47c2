package service

import (
	"sync"
	"time"

	"github.com/facepay/flowgate/util"
)

// Reaper cancels sessions whose caller walked away. Redis-backed session
// snapshots expire by TTL on their own; the reaper frees the live machines.
type Reaper struct {
	worker *util.TickWorker
}

func NewReaper(service *FlowExecutionService, maxIdle time.Duration, wg *sync.WaitGroup) *Reaper {
	interval := maxIdle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return &Reaper{
		worker: util.NewTickWorker("session-reaper", interval, make(chan struct{}), func() {
			service.Expire(maxIdle)
		}, wg),
	}
}

func (r *Reaper) Start() {
	r.worker.Start()
}

func (r *Reaper) Stop() {
	if r.worker.IsRunning() {
		r.worker.Stop()
	}
}
