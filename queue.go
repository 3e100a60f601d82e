package routequery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-routequery/pkg/activity"
	"github.com/goliatone/go-routequery/pkg/tick"
	"github.com/oklog/ulid/v2"
)

// Queues coalesces field writes per Store. Every synchronizer bound to the same
// store shares one pending set; all writes made before the next tick land in
// the document as a single commit.
//
// Pending sets are reference counted by the synchronizers attached to them and
// dropped once nothing is attached, pending or scheduled, so a registry does
// not keep stores alive past their synchronizers.
type Queues struct {
	scheduler tick.Scheduler
	logger    Logger
	emitter   *activity.Emitter
	ctx       context.Context

	mu   sync.Mutex // protects sets
	sets map[Store]*pendingSet
}

type pendingSet struct {
	fields    Query
	mode      Mode
	scheduled bool
	refs      int
}

// QueueOption configures a Queues registry.
type QueueOption func(*Queues)

// WithScheduler sets the scheduler flushes are deferred to (default tick.Default()).
func WithScheduler(scheduler tick.Scheduler) QueueOption {
	return func(q *Queues) {
		if scheduler != nil {
			q.scheduler = scheduler
		}
	}
}

// WithQueueLogger attaches a flush logger.
func WithQueueLogger(logger Logger) QueueOption {
	return func(q *Queues) {
		if logger == nil {
			q.logger = noopLogger{}
			return
		}
		q.logger = logger
	}
}

// WithQueueContext sets the context passed to Store.Commit and activity hooks.
func WithQueueContext(ctx context.Context) QueueOption {
	return func(q *Queues) {
		if ctx != nil {
			q.ctx = ctx
		}
	}
}

// WithActivityHooks emits query.field.queued and query.committed events to
// hooks. Nil hooks are dropped; cfg.Verbs narrows the verbs emitted.
func WithActivityHooks(hooks activity.Hooks, cfg ...activity.Config) QueueOption {
	config := activity.Config{Enabled: true}
	if len(cfg) > 0 {
		config = cfg[0]
	}
	return func(q *Queues) {
		q.emitter = activity.NewEmitter(hooks, config)
	}
}

// NewQueues constructs an empty registry.
func NewQueues(opts ...QueueOption) *Queues {
	q := &Queues{
		scheduler: tick.Default(),
		logger:    noopLogger{},
		ctx:       context.Background(),
		sets:      map[Store]*pendingSet{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

var defaultQueues = NewQueues()

// DefaultQueues returns the process-wide registry, flushed on tick.Default().
func DefaultQueues() *Queues {
	return defaultQueues
}

// Enqueue records a pending write. The last write for a name before the flush
// wins, and so does the last mode. Only the first write since the previous
// flush schedules a flush.
func (q *Queues) Enqueue(store Store, name string, value RawValue, mode Mode) {
	q.mu.Lock()
	set := q.setFor(store)
	set.fields[name] = value
	set.mode = mode.orDefault()
	schedule := !set.scheduled
	set.scheduled = true
	q.mu.Unlock()

	if q.emitter.Allows(activity.VerbQueryFieldQueued) {
		if err := q.emit(activity.BuildFieldQueuedEvent(activity.QueryEventInput{
			Field:    name,
			Mode:     string(mode.orDefault()),
			NewValue: value.String(),
		})); err != nil {
			q.logger.LogFlush(FlushEvent{Store: store, Fields: []string{name}, Mode: mode.orDefault(), ActivityErr: err})
		}
	}

	if schedule {
		q.scheduler.Defer(func() {
			_ = q.flush(store)
		})
	}
}

// Flush commits the pending writes for store now. It is a no-op when nothing
// is pending.
func (q *Queues) Flush(store Store) error {
	return q.flush(store)
}

// FlushAll flushes every store with pending writes and joins the errors.
func (q *Queues) FlushAll() error {
	q.mu.Lock()
	stores := make([]Store, 0, len(q.sets))
	for store, set := range q.sets {
		if len(set.fields) > 0 {
			stores = append(stores, store)
		}
	}
	q.mu.Unlock()

	var errs []error
	for _, store := range stores {
		if err := q.flush(store); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending returns a copy of the writes waiting for store.
func (q *Queues) Pending(store Store) Query {
	q.mu.Lock()
	defer q.mu.Unlock()
	set, ok := q.sets[store]
	if !ok {
		return Query{}
	}
	return set.fields.Clone()
}

// Len reports how many stores currently hold a pending set.
func (q *Queues) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.sets)
}

func (q *Queues) flush(store Store) error {
	q.mu.Lock()
	set, ok := q.sets[store]
	if !ok {
		q.mu.Unlock()
		return nil
	}
	set.scheduled = false
	if len(set.fields) == 0 {
		q.reclaim(store, set)
		q.mu.Unlock()
		return nil
	}
	pending := set.fields
	mode := set.mode
	set.fields = Query{}
	q.reclaim(store, set)
	q.mu.Unlock()

	merged := MergeQueries(pending, store.Query()).Compact()
	batch := ulid.Make().String()
	start := time.Now()
	err := store.Commit(q.ctx, merged, mode)
	event := FlushEvent{
		Batch:    batch,
		Store:    store,
		Fields:   pending.Names(),
		Mode:     mode,
		Query:    merged,
		Duration: time.Since(start),
		Err:      err,
	}
	var delivery *DeliveryError
	if errors.As(err, &delivery) {
		event.Err = nil
		event.DeliveryErr = err
	}
	if event.Err == nil {
		event.ActivityErr = q.emit(activity.BuildQueryCommittedEvent(activity.QueryEventInput{
			Batch:    batch,
			Fields:   event.Fields,
			Mode:     string(mode),
			Location: merged.Encode(),
		}))
	}
	q.logger.LogFlush(event)
	return err
}

func (q *Queues) emit(event activity.Event) error {
	if !q.emitter.Enabled() {
		return nil
	}
	return q.emitter.Emit(q.ctx, event)
}

// setFor must be called with mu held.
func (q *Queues) setFor(store Store) *pendingSet {
	set, ok := q.sets[store]
	if !ok {
		set = &pendingSet{fields: Query{}}
		q.sets[store] = set
	}
	return set
}

// reclaim must be called with mu held.
func (q *Queues) reclaim(store Store, set *pendingSet) {
	if set.refs <= 0 && len(set.fields) == 0 && !set.scheduled {
		delete(q.sets, store)
	}
}

func (q *Queues) attach(store Store) {
	q.mu.Lock()
	q.setFor(store).refs++
	q.mu.Unlock()
}

func (q *Queues) release(store Store) {
	q.mu.Lock()
	defer q.mu.Unlock()
	set, ok := q.sets[store]
	if !ok {
		return
	}
	set.refs--
	q.reclaim(store, set)
}
