package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sudomakeinstall/cardio/internal/app"
	"github.com/sudomakeinstall/cardio/internal/config/loader"
	"github.com/sudomakeinstall/cardio/internal/config/notify"
	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/registry"
	"github.com/sudomakeinstall/cardio/internal/config/watcher"
)

// watch reloads the configuration file on change and applies edits read
// from stdin until ctx is done. Every published snapshot is summarized on
// stdout; rejected changes are reported on stderr and do not stop the loop.
func watch(ctx context.Context, session *app.Session, opts *options, logger *zap.Logger) error {
	w, err := watcher.New(opts.configPath, watcher.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observers run on the session and watcher goroutines, and malformed
	// edits are reported from a third; all of them share one lock.
	var mu sync.Mutex

	sub := session.Notifier().Subscribe(func(c notify.Change) {
		mu.Lock()
		defer mu.Unlock()
		if c.Type == notify.ChangeRejected {
			printf(opts.stderr, "Error: %v\n", c.Err)
			return
		}
		printf(opts.stdout, "\n%s: %s\n", c.Source, strings.Join(c.Paths, ", "))
		printSummary(opts.stdout, session.Current())
	})
	defer sub.Unsubscribe()

	edits := make(chan app.Edit)
	problems := make(chan error)
	// readEdits is not waited for: it stays blocked in Scan until stdin
	// is closed, and only ever sends while ctx is live.
	go readEdits(ctx, opts.stdin, edits, problems)

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx, edits) }()

	reported := make(chan struct{})
	go func() {
		defer close(reported)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-problems:
				mu.Lock()
				printf(opts.stderr, "Error: %v\n", err)
				mu.Unlock()
			}
		}
	}()

	logger.Info("watching configuration", zap.String("path", w.Path()))
	err = w.Run(ctx, func(e watcher.Event) {
		if e.Op == watcher.OpRemove || e.Op == watcher.OpRename {
			logger.Warn("configuration file went away; keeping the current configuration",
				zap.String("path", e.Path), zap.Stringer("op", e.Op))
			return
		}
		_, _ = session.ReloadFile(loader.DefaultFS(), opts.configPath)
	})

	cancel()
	<-done
	<-reported
	return err
}

// readEdits parses "path=value" lines from r into edits until r is
// exhausted or ctx is done. Malformed lines, and values a known field
// rejects on its own, are sent on problems and skipped.
func readEdits(ctx context.Context, r io.Reader, edits chan<- app.Edit, problems chan<- error) {
	if r == nil {
		return
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		path, value, err := loader.ParseSet(line)
		if err == nil {
			err = checkEdit(path, value)
		}
		if err != nil {
			select {
			case problems <- err:
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case edits <- app.NewEdit(raw.EmptyMap().With(path, value)):
		case <-ctx.Done():
			return
		}
	}
}

// checkEdit validates value against the field at path. Paths the registry
// does not index, such as list elements, are left to full validation.
func checkEdit(path string, value raw.Value) error {
	s := registry.Builtin().Get(path)
	if s == nil {
		return nil
	}
	_, err := s.Validate(value)
	return err
}
