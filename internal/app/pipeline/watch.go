package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"meeting-summarizer/internal/app/util/files"
)

// settleDelay gives the producer time to finish writing a newly created file
// before the pipeline reads it.
const settleDelay = 500 * time.Millisecond

// Watcher runs the pipeline for every audio file dropped into a directory.
type Watcher struct {
	pipeline      *Pipeline
	watcher       *fsnotify.Watcher
	req           Request
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
	logger        *zap.Logger
}

// NewWatcher starts watching dir. req supplies the models, context and owner
// applied to every detected file.
func NewWatcher(p *Pipeline, dir string, req Request, maxConcurrent int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	if maxConcurrent < 1 {
		maxConcurrent = 2
	}

	return &Watcher{
		pipeline:      p,
		watcher:       fsw,
		req:           req,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		logger:        p.logger,
	}, nil
}

// Start blocks processing events until ctx is cancelled, then waits for
// in-flight runs to finish.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for new audio files",
		zap.Int("max_concurrent", w.maxConcurrent))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) || !files.IsAudioFile(event.Name) {
				continue
			}
			w.logger.Info("new audio file detected", zap.String("file", event.Name))

			time.Sleep(settleDelay)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()
					w.process(ctx, path)
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) process(ctx context.Context, path string) {
	req := w.req
	req.AudioPath = path
	req.AudioFilename = filepath.Base(path)

	rec, err := w.pipeline.Run(ctx, req)
	if err != nil {
		w.logger.Error("failed to process watched file",
			zap.String("file", path), zap.Error(err))
		return
	}
	w.logger.Info("watched file processed",
		zap.String("file", path), zap.String("record_id", rec.ID))
}
