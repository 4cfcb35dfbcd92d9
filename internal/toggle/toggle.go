package toggle

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/shared"
	"golang.org/x/time/rate"
)

// Options configures a [Controller].
//
// Check is optional and only used by [Controller.CheckAll].
type Options[K comparable, E any] struct {
	Name   string
	Key    func(E) K
	Add    func(ctx context.Context, e E) error
	Remove func(ctx context.Context, k K) error
	Check  func(ctx context.Context, k K) (bool, error)
	Logger *log.Logger
}

// Controller tracks membership and in-flight state per key.
//
// Controllers are scoped to one screen or command; build a new one rather than reusing status.
type Controller[K comparable, E any] struct {
	opts   Options[K, E]
	logger *log.Logger

	mu     sync.Mutex
	status map[K]bool
	busy   map[K]bool
}

// New creates a controller. Key, Add and Remove are required.
func New[K comparable, E any](opts Options[K, E]) *Controller[K, E] {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller[K, E]{
		opts:   opts,
		logger: shared.WithLogger(logger, "collection", opts.Name),
		status: make(map[K]bool),
		busy:   make(map[K]bool),
	}
}

// Name returns the collection name.
func (c *Controller[K, E]) Name() string { return c.opts.Name }

// Key returns the identity of e.
func (c *Controller[K, E]) Key(e E) K { return c.opts.Key(e) }

// Status reports whether k is a member.
func (c *Controller[K, E]) Status(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status[k]
}

// Busy reports whether a toggle for k is in flight.
func (c *Controller[K, E]) Busy(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[k]
}

// Set records membership for k without a remote call.
func (c *Controller[K, E]) Set(k K, member bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[k] = member
}

// Seed marks every entity as a member, for lists whose contents already define membership.
func (c *Controller[K, E]) Seed(entities []E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entities {
		c.status[c.opts.Key(e)] = true
	}
}

// Toggle removes e when it is a member and adds it otherwise, returning the resulting status.
//
// The status changes only after the remote call succeeds. A toggle for a key that is already in
// flight returns [shared.ErrBusy] without calling out.
func (c *Controller[K, E]) Toggle(ctx context.Context, e E) (bool, error) {
	k := c.opts.Key(e)

	member, err := c.acquire(k)
	if err != nil {
		return member, err
	}
	defer c.release(k)

	if member {
		err = c.opts.Remove(ctx, k)
	} else {
		err = c.opts.Add(ctx, e)
	}
	if err != nil {
		c.logger.Warn("toggle failed", "key", k, "member", member, "error", err)
		return member, err
	}

	c.Set(k, !member)
	return !member, nil
}

// Add adds e unless it is already a member.
func (c *Controller[K, E]) Add(ctx context.Context, e E) error {
	if c.Status(c.opts.Key(e)) {
		return nil
	}
	_, err := c.Toggle(ctx, e)
	return err
}

// Remove removes e remotely, whatever its recorded status, and records it as not a member.
func (c *Controller[K, E]) Remove(ctx context.Context, e E) error {
	k := c.opts.Key(e)
	if _, err := c.acquire(k); err != nil {
		return err
	}
	defer c.release(k)

	if err := c.opts.Remove(ctx, k); err != nil {
		c.logger.Warn("remove failed", "key", k, "error", err)
		return err
	}
	c.Set(k, false)
	return nil
}

func (c *Controller[K, E]) acquire(k K) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[k] {
		return c.status[k], fmt.Errorf("%w: %v", shared.ErrBusy, k)
	}
	c.busy[k] = true
	return c.status[k], nil
}

func (c *Controller[K, E]) release(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, k)
}

// CheckOptions bounds a batch status check.
type CheckOptions struct {
	Limit      int     // Entities checked from the head of the list (default: 20)
	NumWorkers int     // Concurrent checks (default: 5)
	RateLimit  float64 // Checks per second, unlimited when zero
}

// DefaultCheckLimit is the number of entities checked when [CheckOptions.Limit] is unset.
const DefaultCheckLimit = 20

// CheckAll checks each entity in the bounded prefix of entities and records the result.
//
// A failed check records the entity as not a member; it does not stop the others. Entities past
// the limit keep their current status.
func (c *Controller[K, E]) CheckAll(ctx context.Context, entities []E, opts CheckOptions) map[K]bool {
	if opts.Limit <= 0 {
		opts.Limit = DefaultCheckLimit
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if len(entities) > opts.Limit {
		entities = entities[:opts.Limit]
	}

	results := make(map[K]bool, len(entities))
	if c.opts.Check == nil || len(entities) == 0 {
		return results
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan K, len(entities))
	for _, e := range entities {
		jobs <- c.opts.Key(e)
	}
	close(jobs)

	var (
		wg  sync.WaitGroup
		rmu sync.Mutex
	)
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				member := c.check(ctx, limiter, k)
				c.Set(k, member)
				rmu.Lock()
				results[k] = member
				rmu.Unlock()
			}
		}()
	}
	wg.Wait()
	return results
}

func (c *Controller[K, E]) check(ctx context.Context, limiter *rate.Limiter, k K) bool {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return false
		}
	}
	member, err := c.opts.Check(ctx, k)
	if err != nil {
		c.logger.Warn("status check failed", "key", k, "error", err)
		return false
	}
	return member
}

// Move reclassifies e by adding it to to and then removing it from from.
//
// When the add fails the remove is not attempted. When the remove fails after a successful add the
// entity is a member of both until the next refresh, and the returned error wraps [shared.ErrPartialMove].
func Move[K comparable, E any](ctx context.Context, from, to *Controller[K, E], e E) error {
	k := from.Key(e)

	if _, err := to.acquire(k); err != nil {
		return err
	}
	err := to.opts.Add(ctx, e)
	if err == nil {
		to.Set(k, true)
	}
	to.release(k)
	if err != nil {
		to.logger.Warn("move failed", "key", k, "to", to.Name(), "error", err)
		return err
	}

	if err := from.Remove(ctx, e); err != nil {
		from.logger.Error("move left entity in both lists", "key", k, "from", from.Name(), "to", to.Name(), "error", err)
		return fmt.Errorf("%w: %v added to %s but not removed from %s: %w", shared.ErrPartialMove, k, to.Name(), from.Name(), err)
	}
	return nil
}
