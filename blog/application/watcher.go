package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/mdblog/blog/domain"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 250 * time.Millisecond

// Scanner is anything that can refresh itself from the content directory.
type Scanner interface {
	Scan() error
}

type WatcherOptions struct {
	// WatchFS enables filesystem notifications for the content directory.
	WatchFS bool
	// Interval triggers a scan periodically when greater than zero.
	Interval time.Duration
	// Debounce collapses bursts of filesystem events into one scan.
	Debounce time.Duration
}

// Watcher keeps a Scanner up to date in the background, either from
// filesystem notifications, a polling interval, or both.
type Watcher struct {
	scanner Scanner
	dir     string
	opts    WatcherOptions
	logger  zerolog.Logger

	// Watcher lifecycle context - cancelled when Close() is called
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func NewWatcher(scanner Scanner, dir string, opts WatcherOptions, logger zerolog.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		scanner: scanner,
		dir:     dir,
		opts:    opts,
		logger:  logger.With().Str("component", "watcher").Str("dir", dir).Logger(),
		ctx:     ctx,
		cancel:  cancel,
		wg:      &sync.WaitGroup{},
	}
}

// Start launches the background loop. If filesystem notifications cannot be
// set up the watcher falls back to polling alone.
func (w *Watcher) Start() {
	var fsw *fsnotify.Watcher
	if w.opts.WatchFS {
		var err error
		fsw, err = fsnotify.NewWatcher()
		if err != nil {
			w.logger.Warn().Err(err).Msg("Filesystem notifications unavailable; relying on polling")
			fsw = nil
		} else if err := fsw.Add(w.dir); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to watch content directory; relying on polling")
			fsw.Close()
			fsw = nil
		}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(fsw)
	}()

	w.logger.Info().
		Bool("fsnotify", fsw != nil).
		Dur("interval", w.opts.Interval).
		Msg("Watching content directory")
}

// Close stops the background loop and waits for an in-flight scan to finish.
func (w *Watcher) Close() error {
	w.cancel()
	w.wg.Wait()

	return nil
}

func (w *Watcher) run(fsw *fsnotify.Watcher) {
	var events <-chan fsnotify.Event
	var errs <-chan error
	if fsw != nil {
		defer fsw.Close()
		events = fsw.Events
		errs = fsw.Errors
	}

	var tick <-chan time.Time
	if w.opts.Interval > 0 {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !strings.HasSuffix(evt.Name, domain.PostSuffix) {
				continue
			}
			w.logger.Debug().Str("path", evt.Name).Str("op", evt.Op.String()).Msg("Post file changed")
			debounce.Reset(w.opts.Debounce)
			pending = debounce.C
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error().Err(err).Msg("Filesystem watcher error")
		case <-pending:
			pending = nil
			w.scan()
		case <-tick:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	if err := w.scanner.Scan(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to scan content directory")
	}
}
