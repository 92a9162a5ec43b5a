package pipeline

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"meeting-summarizer/internal/app/util/files"
)

// BatchOptions control a directory run.
type BatchOptions struct {
	// Parallel caps concurrent pipeline runs. Values below 1 mean serial.
	Parallel int

	// SkipProcessed skips files whose name already has a history record.
	SkipProcessed bool

	// Progress enables an interactive progress bar on ProgressWriter
	// (stderr when nil).
	Progress       bool
	ProgressWriter io.Writer
}

// BatchResult reports one file's outcome within a batch.
type BatchResult struct {
	AudioPath string
	RecordID  string
	Skipped   bool
	Err       error
}

// RunDirectory processes every audio file in dir, oldest first. Files that
// fail do not stop the batch; each outcome lands in the returned slice,
// ordered like the input files.
func (p *Pipeline) RunDirectory(ctx context.Context, dir string, req Request, opts BatchOptions) ([]BatchResult, error) {
	fileInfos, err := files.ListAudioFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(fileInfos) == 0 {
		return nil, nil
	}

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	var container *mpb.Progress
	var bar *mpb.Bar
	if opts.Progress {
		writer := opts.ProgressWriter
		if writer == nil {
			writer = os.Stderr
		}
		container = mpb.New(
			mpb.WithOutput(writer),
			mpb.WithRefreshRate(120*time.Millisecond),
		)
		bar = container.AddBar(int64(len(fileInfos)),
			mpb.PrependDecorators(
				decor.Name("Summarizing "),
				decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.NewPercentage("%.1f", decor.WCSyncSpace),
			),
		)
	}

	results := make([]BatchResult, len(fileInfos))
	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)

	for i, fileInfo := range fileInfos {
		wg.Add(1)
		go func(i int, path, name string) {
			defer wg.Done()
			if bar != nil {
				defer bar.Increment()
			}

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = p.runBatchFile(ctx, path, name, req, opts)
		}(i, fileInfo.FullPath, fileInfo.Name)
	}
	wg.Wait()

	if container != nil {
		container.Wait()
	}
	return results, nil
}

func (p *Pipeline) runBatchFile(ctx context.Context, path, name string, req Request, opts BatchOptions) BatchResult {
	result := BatchResult{AudioPath: path}

	if opts.SkipProcessed {
		existing, err := p.dao.GetByFilename(ctx, name)
		if err == nil && len(existing) > 0 {
			p.logger.Info("skipping already processed file",
				zap.String("file", name), zap.String("record_id", existing[0].ID))
			result.Skipped = true
			return result
		}
	}

	fileReq := req
	fileReq.AudioPath = path
	fileReq.AudioFilename = name

	rec, err := p.Run(ctx, fileReq)
	if err != nil {
		p.logger.Error("batch file failed", zap.String("file", name), zap.Error(err))
		result.Err = err
		return result
	}
	result.RecordID = rec.ID
	return result
}
