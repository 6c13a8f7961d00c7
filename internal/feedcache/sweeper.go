package feedcache

import (
	"log"
	"sync"
	"time"
)

// Sweeper periodically evicts expired entries from a cache.
type Sweeper struct {
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

type sweepable interface {
	Sweep() int
}

// StartSweeper runs c.Sweep every interval until Stop is called.
func StartSweeper(c sweepable, interval time.Duration) *Sweeper {
	s := &Sweeper{stop: make(chan struct{}), done: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					log.Printf("feedcache: swept %d expired entries", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
	return s
}

// Stop halts the sweeper and waits for it to exit. Safe to call more than once.
func (s *Sweeper) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
