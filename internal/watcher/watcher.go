// Package watcher keeps the rank current while Claude Code runs. It watches
// the Claude data directory, runs an incremental sync after writes settle and
// emits alerts for level-ups and new achievements.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/blackwell-systems/clauderank/internal/claude"
	"github.com/blackwell-systems/clauderank/internal/logger"
	"github.com/blackwell-systems/clauderank/internal/ranker"
)

// Syncer runs an incremental sync. *ranker.Service satisfies it.
type Syncer interface {
	IncrementalSync(ctx context.Context) (*ranker.SyncResult, error)
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning"
	Title   string
	Message string
	Time    time.Time
}

// Options configures a Watcher.
type Options struct {
	// ClaudeHome is the directory holding stats-cache.json and history.jsonl.
	ClaudeHome string
	// Debounce is how long writes must stop before a sync runs.
	Debounce time.Duration
	// MinInterval is the minimum time between two syncs. Zero disables
	// throttling.
	MinInterval time.Duration
	Logger      *slog.Logger
}

// Watcher syncs the rank whenever the Claude data files change.
type Watcher struct {
	opts    Options
	syncer  Syncer
	alertFn func(Alert)
	limiter *rate.Limiter
	last    *ranker.SyncResult
}

// watchedFiles are the data files whose writes trigger a sync.
var watchedFiles = map[string]bool{
	claude.StatsCacheFile: true,
	claude.HistoryFile:    true,
}

// New creates a Watcher. alertFn may be nil.
func New(syncer Syncer, opts Options, alertFn func(Alert)) *Watcher {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &Watcher{
		opts:    opts,
		syncer:  syncer,
		alertFn: alertFn,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Last returns the result of the most recent successful sync, or nil.
func (w *Watcher) Last() *ranker.SyncResult {
	return w.last
}

// Run syncs once, then watches the Claude data directory until ctx is
// cancelled. Writes are debounced and syncs throttled to MinInterval.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	// Watch the directory rather than the files: Claude Code replaces them.
	if err := fsw.Add(w.opts.ClaudeHome); err != nil {
		return fmt.Errorf("watching %s: %w", w.opts.ClaudeHome, err)
	}
	w.opts.Logger.Debug("watching", "dir", w.opts.ClaudeHome, "debounce", w.opts.Debounce)

	if err := w.sync(ctx); err != nil {
		return err
	}

	settle := time.NewTimer(w.opts.Debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if relevant(ev) {
				w.opts.Logger.Debug("data file changed", "path", ev.Name, "op", ev.Op.String())
				settle.Reset(w.opts.Debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("fsnotify error", "error", err)
		case <-settle.C:
			if err := w.sync(ctx); err != nil {
				return err
			}
		}
	}
}

// relevant reports whether ev is a write to one of the watched data files.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return watchedFiles[filepath.Base(ev.Name)]
}

// sync waits for the rate limiter, then runs Check and emits its alerts. It
// only fails when ctx is done.
func (w *Watcher) sync(ctx context.Context) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return ctx.Err()
	}
	for _, a := range w.Check(ctx) {
		if w.alertFn != nil {
			w.alertFn(a)
		}
	}
	return nil
}

// Check performs a single sync and returns the alerts it produced. A sync
// failure becomes a warning alert; missing usage data yields nothing.
func (w *Watcher) Check(ctx context.Context) []Alert {
	res, err := w.syncer.IncrementalSync(ctx)
	if errors.Is(err, ranker.ErrNoData) {
		w.opts.Logger.Debug("no usage data yet")
		return nil
	}
	if err != nil {
		w.opts.Logger.Warn("sync failed", "error", err)
		return []Alert{{
			Level:   "warning",
			Title:   "Sync failed",
			Message: err.Error(),
			Time:    time.Now(),
		}}
	}
	w.last = res
	return AlertsFor(res, time.Now())
}
