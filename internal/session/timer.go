package session

import (
	"sync"
	"time"
)

// CountdownEvents receives timer output. Callbacks run on the countdown
// goroutine and must not block.
type CountdownEvents struct {
	OnTick func(remaining int)
	// OnWarning fires exactly once, when remaining first reaches the
	// warning threshold.
	OnWarning func()
	// OnFinalTick fires on every tick inside the final window.
	OnFinalTick func(remaining int)
	OnExpire    func()
}

// Countdown drives the interview clock. It counts down from total in
// interval steps, fires a one-shot warning at warnAt, per-tick cues in
// the last finalWindow steps, and OnExpire at zero. Stop is idempotent
// and safe to race with expiry.
type Countdown struct {
	total       int
	warnAt      int
	finalWindow int
	interval    time.Duration
	ev          CountdownEvents

	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
}

func NewCountdown(total, warnAt, finalWindow int, interval time.Duration, ev CountdownEvents) *Countdown {
	return &Countdown{
		total:       total,
		warnAt:      warnAt,
		finalWindow: finalWindow,
		interval:    interval,
		ev:          ev,
		stop:        make(chan struct{}),
	}
}

func (c *Countdown) Start() {
	go c.run()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	remaining := c.total
	warned := false
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		remaining--
		if c.ev.OnTick != nil {
			c.ev.OnTick(remaining)
		}
		if !warned && remaining == c.warnAt {
			warned = true
			if c.ev.OnWarning != nil {
				c.ev.OnWarning()
			}
		}
		if remaining > 0 && remaining <= c.finalWindow {
			if c.ev.OnFinalTick != nil {
				c.ev.OnFinalTick(remaining)
			}
		}
		if remaining <= 0 {
			c.Stop()
			if c.ev.OnExpire != nil {
				c.ev.OnExpire()
			}
			return
		}
	}
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}
