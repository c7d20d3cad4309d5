// Package subscriptions implements the live-query engine: standing queries
// that re-deliver their full result set whenever a store write touches one
// of their topics. Consumers replace their whole local view on every
// delivery; there are no incremental diffs.
package subscriptions

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry fans store-change notifications out to standing queries.
// Topics are user ids: a message write notifies both participants, a
// subscription lists every topic whose writes affect its query.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]map[*handle]struct{} // topic -> handles
	closed bool
	logger *zap.Logger
}

// handle is the registry-side state of one live subscription
type handle struct {
	topics []string
	dirty  chan struct{} // size 1, coalesced refresh signal
}

// NewRegistry creates a subscription registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		subs:   make(map[string]map[*handle]struct{}),
		logger: logger,
	}
}

// Notify marks every subscription on the given topics dirty. Deliveries
// are coalesced: a subscription that is already pending a refresh is not
// queued twice.
func (r *Registry) Notify(topics ...string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return
	}

	for _, topic := range topics {
		for h := range r.subs[topic] {
			select {
			case h.dirty <- struct{}{}:
			default:
			}
		}
	}
}

// Close tears the registry down. Existing subscriptions finish when their
// contexts are cancelled; new notifications are dropped.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// ActiveCount returns the number of live subscriptions across all topics
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*handle]struct{})
	for _, handles := range r.subs {
		for h := range handles {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}

func (r *Registry) add(h *handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, topic := range h.topics {
		set, ok := r.subs[topic]
		if !ok {
			set = make(map[*handle]struct{})
			r.subs[topic] = set
		}
		set[h] = struct{}{}
	}
}

func (r *Registry) remove(h *handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, topic := range h.topics {
		set, ok := r.subs[topic]
		if !ok {
			continue
		}
		delete(set, h)
		if len(set) == 0 {
			delete(r.subs, topic)
		}
	}
}

// Subscription is a live, restartable view over one standing query.
// Updates carries full snapshots with latest-wins coalescing; Err carries
// at most one terminal error, after which the subscription is dead and the
// caller must re-subscribe. Cancel must be called when the consuming view
// is torn down.
type Subscription[T any] struct {
	Updates <-chan T
	Err     <-chan error

	cancel context.CancelFunc
	once   sync.Once
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

// Open registers a standing query against the registry. The query runs once
// immediately for the initial snapshot and again after every notification on
// any of the topics. A query error is delivered on Err and ends the
// subscription; the registry never retries on the caller's behalf.
func Open[T any](
	ctx context.Context,
	reg *Registry,
	topics []string,
	query func(context.Context) (T, error),
) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	h := &handle{
		topics: topics,
		dirty:  make(chan struct{}, 1),
	}
	updates := make(chan T, 1)
	errc := make(chan error, 1)

	reg.add(h)

	// Initial snapshot
	h.dirty <- struct{}{}

	go func() {
		defer reg.remove(h)
		defer close(updates)
		defer close(errc)

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.dirty:
				snapshot, err := query(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					reg.logger.Warn("Live query failed, ending subscription",
						zap.Strings("topics", h.topics),
						zap.Error(err),
					)
					errc <- err
					return
				}

				// Latest snapshot wins; a slow consumer sees only the
				// most recent full result set.
				select {
				case updates <- snapshot:
				default:
					select {
					case <-updates:
					default:
					}
					select {
					case updates <- snapshot:
					default:
					}
				}
			}
		}
	}()

	return &Subscription[T]{
		Updates: updates,
		Err:     errc,
		cancel:  cancel,
	}
}
