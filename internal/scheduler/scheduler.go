package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/service/warehouse"
)

const pollTimeout = 30 * time.Second

// SnapshotSource loads the current warehouse state.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (warehouse.Snapshot, error)
}

// Watcher polls items and inventory on a cron schedule and pushes changed
// snapshots to subscribers. It stands in for a store-side change feed.
type Watcher struct {
	cron     *cron.Cron
	source   SnapshotSource
	schedule string
	logger   *zap.Logger

	mu     sync.Mutex
	subs   map[uint64]func(warehouse.Snapshot)
	nextID uint64
	last   *warehouse.Snapshot
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	watcher *Watcher
	id      uint64
	once    sync.Once
}

// NewWatcher creates a watcher; schedule uses cron syntax, e.g. "@every 2s".
func NewWatcher(source SnapshotSource, schedule string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger.Sugar()})))

	return &Watcher{
		cron:     c,
		source:   source,
		schedule: schedule,
		logger:   logger,
		subs:     make(map[uint64]func(warehouse.Snapshot)),
	}
}

// Start registers the poll job and starts the cron loop.
func (w *Watcher) Start() error {
	w.logger.Info("starting warehouse watcher", zap.String("schedule", w.schedule))

	if _, err := w.cron.AddFunc(w.schedule, w.poll); err != nil {
		return fmt.Errorf("schedule warehouse poll %q: %w", w.schedule, err)
	}

	w.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running poll to finish.
func (w *Watcher) Stop() {
	w.logger.Info("stopping warehouse watcher")
	<-w.cron.Stop().Done()
}

// Subscribe registers fn for every changed snapshot. When a snapshot has
// already been observed, fn receives it before Subscribe returns.
func (w *Watcher) Subscribe(fn func(warehouse.Snapshot)) *Subscription {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.subs[id] = fn
	last := w.last
	w.mu.Unlock()

	if last != nil {
		fn(*last)
	}
	return &Subscription{watcher: w, id: id}
}

// Subscribers returns the number of open subscriptions.
func (w *Watcher) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.watcher.mu.Lock()
		delete(s.watcher.subs, s.id)
		s.watcher.mu.Unlock()
	})
}

func (w *Watcher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	if err := w.Poll(ctx); err != nil {
		w.logger.Warn("warehouse poll failed", zap.Error(err))
	}
}

// Poll loads a snapshot and notifies subscribers if it changed.
func (w *Watcher) Poll(ctx context.Context) error {
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.last != nil && reflect.DeepEqual(*w.last, snap) {
		w.mu.Unlock()
		return nil
	}
	w.last = &snap
	targets := make([]func(warehouse.Snapshot), 0, len(w.subs))
	for _, fn := range w.subs {
		targets = append(targets, fn)
	}
	w.mu.Unlock()

	w.logger.Debug("warehouse changed", zap.Int("rows", len(snap.Rows)), zap.Int("subscribers", len(targets)))
	for _, fn := range targets {
		fn(snap)
	}
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
