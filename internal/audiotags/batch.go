package audiotags

import (
	"context"
	"sync"

	"scriptkit/internal/logging"
)

// BatchItem pairs a file with its outcome.
type BatchItem struct {
	Result StripResult
	Err    error
}

// StripBatch strips every file with up to jobs concurrent ffmpeg runs.
// Results are returned in input order. A cancelled context stops new work
// but lets in-flight runs finish their atomic replace.
func (s *Stripper) StripBatch(ctx context.Context, paths []string, jobs int, keepChapters bool) []BatchItem {
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(paths) {
		jobs = len(paths)
	}

	items := make([]BatchItem, len(paths))
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup

	for i, path := range paths {
		if ctx.Err() != nil {
			items[i] = BatchItem{Err: ctx.Err()}
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, target string) {
			defer wg.Done()
			defer func() { <-sem }()
			result, err := s.Strip(ctx, StripRequest{Path: target, KeepChapters: keepChapters})
			items[idx] = BatchItem{Result: result, Err: err}
			if err != nil {
				s.logger.Warn("strip failed",
					logging.String("path", target),
					logging.Error(err),
				)
			}
		}(i, path)
	}
	wg.Wait()
	return items
}
