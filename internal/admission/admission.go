package admission

import (
	"errors"
	"sync"
)

var ErrRejected = errors.New("rate limit exceeded for IP address")

// Controller caps the number of in-flight requests per client address.
// It bounds concurrency, not a time-windowed rate.
type Controller struct {
	limit int

	mu       sync.Mutex
	inflight map[string]int
}

// New returns a controller admitting at most limit concurrent requests per
// address. A limit <= 0 admits everything.
func New(limit int) *Controller {
	return &Controller{
		limit:    limit,
		inflight: make(map[string]int),
	}
}

// Acquire admits a request from addr or returns ErrRejected. Every
// successful Acquire must be paired with exactly one Release.
func (c *Controller) Acquire(addr string) error {
	if c.limit <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[addr] >= c.limit {
		return ErrRejected
	}
	c.inflight[addr]++
	return nil
}

// Release frees the slot taken by a successful Acquire.
func (c *Controller) Release(addr string) {
	if c.limit <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.inflight[addr]
	if !ok {
		return
	}
	if n <= 1 {
		delete(c.inflight, addr)
		return
	}
	c.inflight[addr] = n - 1
}

// InFlight returns the number of admitted requests for addr.
func (c *Controller) InFlight(addr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[addr]
}

// Total returns the number of admitted requests across all addresses.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, n := range c.inflight {
		total += n
	}
	return total
}
