package fingerprint

import (
	"context"
	"errors"
	"io/fs"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"orphansweep/internal/scanner"
	"orphansweep/pkg/log"
)

// Pipeline runs the Computer over batches of records with a bounded worker
// pool, building a fingerprint index as tasks complete.
type Pipeline struct {
	computer *Computer
	workers  int
	log      log.LoggerService
}

func NewPipeline(computer *Computer, workers int, logger log.LoggerService) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{
		computer: computer,
		workers:  workers,
		log:      logger,
	}
}

// HashAll fingerprints every record and returns the resulting index.
// Completion order is unspecified. Per-file access errors exclude that
// record and are logged; cache store errors and cancellation abort the
// batch. On cancellation outstanding tasks are abandoned and ctx.Err() is
// returned rather than a partial index.
func (p *Pipeline) HashAll(ctx context.Context, label string, records []scanner.FileRecord) (*Index, error) {
	index := NewIndex()
	if len(records) == 0 {
		return index, nil
	}

	p.log.Info("Calculating fingerprints for %d %s", len(records), label)

	tracker := newTracker(label, len(records), p.workers, p.log)

	workers := pool.New().WithMaxGoroutines(p.workers).WithContext(ctx)
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		rec := rec
		workers.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			digest, cached, err := p.computer.Compute(ctx, rec)
			if err != nil {
				var pathErr *fs.PathError
				if errors.As(err, &pathErr) {
					tracker.Fail()
					p.log.Warn("Skipping %s: %v", rec.Path, err)
					return nil
				}
				return err
			}

			index.Add(digest, rec)
			tracker.Done(cached)
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracker.Finish()
	return index, nil
}
