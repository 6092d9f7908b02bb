package parallel

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Job runs at most one background function at a time.
//
// Start waits for the previous function before launching the next one, which
// gives the threaded rasterizer its barriers: a new display list is not
// decoded before the previous decode finished, and the uploader can Wait on
// the decode job from its own goroutine.
//
// Thread safety: Job is safe for concurrent use.
type Job struct {
	mu sync.Mutex
	g  *errgroup.Group
}

// Start waits for the running function and then runs fn in a new goroutine.
// If the previous function failed, its error is returned and fn is not
// started.
func (j *Job) Start(fn func() error) error {
	if err := j.Wait(); err != nil {
		return err
	}
	g := new(errgroup.Group)
	g.Go(fn)

	j.mu.Lock()
	j.g = g
	j.mu.Unlock()
	return nil
}

// Wait blocks until the running function returns and reports its error.
// Once reported, an error is cleared so the job can be restarted.
func (j *Job) Wait() error {
	j.mu.Lock()
	g := j.g
	j.mu.Unlock()
	if g == nil {
		return nil
	}
	err := g.Wait()

	j.mu.Lock()
	if j.g == g {
		j.g = nil
	}
	j.mu.Unlock()
	return err
}

