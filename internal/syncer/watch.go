package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay gives a depositing process time to finish publishing before
// the watcher reacts. Deposits are atomic, so this is a small debounce
// rather than a correctness requirement. The delay runs on a timer off the
// event loop, so arrivals and cancellation are never blocked by it.
const settleDelay = 250 * time.Millisecond

// Watcher observes the shared inbox and merges bundles as they arrive. It is
// the daemon-mode alternative to running the merge pass by hand.
type Watcher struct {
	processor *Processor
	inbox     *Inbox
	logger    *zap.Logger
}

// NewWatcher returns a watcher that feeds arriving bundles to the processor.
func NewWatcher(processor *Processor, inbox *Inbox, logger *zap.Logger) *Watcher {
	return &Watcher{processor: processor, inbox: inbox, logger: logger}
}

// Run watches the inbox until the context is cancelled. Bundles already
// pending at startup are merged first, so a restart never strands a deposit
// that arrived while the watcher was down.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.inbox.Dir(), 0o755); err != nil {
		return fmt.Errorf("creating inbox directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating inbox watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.inbox.Dir()); err != nil {
		return fmt.Errorf("watching %s: %w", w.inbox.Dir(), err)
	}
	w.logger.Info("watching inbox", zap.String("dir", w.inbox.Dir()))

	w.drain()

	// Arrivals are parked on a timer for the settle delay, then fed back
	// through settled so merges stay serialized on this goroutine.
	settled := make(chan string, 16)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopping")
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			name := filepath.Base(event.Name)
			time.AfterFunc(settleDelay, func() {
				select {
				case settled <- name:
				case <-ctx.Done():
				}
			})
		case name := <-settled:
			w.merge(name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watch error", zap.Error(err))
		}
	}
}

// drain merges everything currently pending.
func (w *Watcher) drain() {
	reports, err := w.processor.ProcessAll()
	if err != nil {
		w.logger.Warn("draining pending bundles", zap.Error(err))
	}
	if len(reports) > 0 {
		w.logger.Info("pending bundles merged", zap.Int("count", len(reports)))
	}
}

// merge handles one arrival. The bundle may already be gone if a concurrent
// manual merge pass archived it first; that is not an error.
func (w *Watcher) merge(name string) {
	if _, err := os.Stat(filepath.Join(w.inbox.Dir(), name)); os.IsNotExist(err) {
		return
	}
	report, err := w.processor.ProcessOne(name)
	if err != nil {
		w.logger.Warn("bundle not processed", zap.String("file", name), zap.Error(err))
		return
	}
	if !report.Clean() {
		w.logger.Warn("bundle merged with issues",
			zap.String("file", name),
			zap.Int("skipped", len(report.Skipped)),
			zap.Int("conflicts", len(report.Conflicts)))
	}
}
