package sweep

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"orphansweep/internal/config"
	"orphansweep/internal/fingerprint"
	"orphansweep/internal/resolver"
	"orphansweep/internal/scanner"
	"orphansweep/pkg/db/store"
	"orphansweep/pkg/log"
)

// ErrAborted is returned when the user quits the confirmation loop.
var ErrAborted = errors.New("operation aborted")

// Options control the deletion workflow around the detection engine.
type Options struct {
	DryRun             bool
	AutoDelete         bool
	ForceDeleteFolders bool

	// Input and Output default to stdin/stdout; tests script them.
	Input  io.Reader
	Output io.Writer
}

// Summary reports what one sweep did.
type Summary struct {
	Detected   int
	Deleted    int
	Skipped    int
	FreedBytes int64

	ScanDuration  time.Duration
	TotalDuration time.Duration
}

// Sweeper owns the full run: directory pairing, scanning, orphan
// resolution and the interactive deletion pass. The engine itself never
// deletes anything; deletion is a separate sequential step over its
// output.
type Sweeper struct {
	cfg      *config.BaseConfig
	log      log.LoggerService
	store    store.FingerprintStore
	scanner  *scanner.Scanner
	resolver *resolver.Resolver
	opts     Options

	stdin *bufio.Scanner
	out   io.Writer
}

func New(cfg *config.BaseConfig, logger log.LoggerService, st store.FingerprintStore, opts Options) *Sweeper {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	computer := fingerprint.NewComputer(st, cfg.Hash, logger.Named("hash"))
	pipeline := fingerprint.NewPipeline(computer, cfg.Hash.Workers, logger.Named("hash"))

	return &Sweeper{
		cfg:      cfg,
		log:      logger,
		store:    st,
		scanner:  scanner.New(cfg.Scan, logger.Named("scan")),
		resolver: resolver.New(pipeline, st, logger.Named("resolve")),
		opts:     opts,
		stdin:    bufio.NewScanner(opts.Input),
		out:      opts.Output,
	}
}

// Run sweeps source against dests and returns a summary. Cancellation
// propagates out unchanged; nothing is deleted after an interrupt.
func (s *Sweeper) Run(ctx context.Context, source string, dests []string) (*Summary, error) {
	start := time.Now()

	source, dests, err := normalizeRoots(source, dests)
	if err != nil {
		return nil, err
	}

	sourceRoots, destRoots, err := s.matchRoots(source, dests)
	if err != nil {
		return nil, err
	}

	var sourceFiles []scanner.FileRecord
	for _, root := range sourceRoots {
		records, err := s.scanner.Scan(root)
		if err != nil {
			return nil, err
		}
		sourceFiles = append(sourceFiles, records...)
	}
	s.log.Info("Source: %d files", len(sourceFiles))

	var destFiles []scanner.FileRecord
	for _, root := range destRoots {
		records, err := s.scanner.Scan(root)
		if err != nil {
			return nil, err
		}
		destFiles = append(destFiles, records...)
	}
	s.log.Info("Destinations: %d files", len(destFiles))

	orphans, err := s.resolver.Resolve(ctx, sourceFiles, destFiles)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Detected:     len(orphans),
		ScanDuration: time.Since(start),
	}

	if len(orphans) == 0 {
		s.log.Info("No orphan files detected, all source files have a match (%.1fs)",
			summary.ScanDuration.Seconds())
		summary.TotalDuration = time.Since(start)
		return summary, nil
	}

	var totalSize int64
	for _, orphan := range orphans {
		totalSize += orphan.Size
	}
	s.log.Warn("%d orphan file(s) detected, %s total (scan took %.1fs)",
		len(orphans), humanize.IBytes(uint64(totalSize)), summary.ScanDuration.Seconds())

	if err := s.deletionPass(ctx, orphans, summary); err != nil {
		return summary, err
	}

	summary.Skipped = summary.Detected - summary.Deleted
	summary.TotalDuration = time.Since(start)
	s.logSummary(summary)

	return summary, nil
}

func (s *Sweeper) deletionPass(ctx context.Context, orphans []scanner.FileRecord, summary *Summary) error {
	yesToAll := false
	for _, orphan := range orphans {
		if err := ctx.Err(); err != nil {
			return err
		}

		shouldDelete := yesToAll
		if !yesToAll {
			decision, err := s.confirm(orphan)
			if err != nil {
				return err
			}

			switch decision {
			case DecisionQuit:
				return ErrAborted
			case DecisionAll:
				yesToAll = true
				shouldDelete = true
			case DecisionYes:
				shouldDelete = true
			case DecisionNo:
				shouldDelete = false
			}
		}

		if shouldDelete && s.deleteFile(orphan.Path) {
			summary.Deleted++
			summary.FreedBytes += orphan.Size
		}
	}
	return nil
}

func (s *Sweeper) logSummary(summary *Summary) {
	if s.opts.DryRun {
		s.log.Info("Summary: %d orphans detected, %d would be deleted (dry-run)",
			summary.Detected, summary.Deleted)
	} else {
		s.log.Info("Summary: %d orphans detected, %d deleted, %d skipped",
			summary.Detected, summary.Deleted, summary.Skipped)
	}
	s.log.Info("Space freed: %s | Total duration: %.1fs",
		humanize.IBytes(uint64(summary.FreedBytes)), summary.TotalDuration.Seconds())
}

// matchRoots intersects first-level subdirectory names of source and each
// destination so only comparable trees are scanned. Without any common
// name the whole roots are compared directly.
func (s *Sweeper) matchRoots(source string, dests []string) (sourceRoots, destRoots []string, err error) {
	sourceSubs, err := scanner.Subdirs(source)
	if err != nil {
		return nil, nil, err
	}

	sourceSeen := make(map[string]struct{})
	destSeen := make(map[string]struct{})

	for _, dest := range dests {
		destSubs, err := scanner.Subdirs(dest)
		if err != nil {
			return nil, nil, err
		}

		var common []string
		for name := range sourceSubs {
			if _, ok := destSubs[name]; ok {
				common = append(common, name)
			}
		}
		sort.Strings(common)

		if len(common) == 0 {
			continue
		}
		s.log.Info("Matched subdirs with %s: %v", filepath.Base(dest), common)

		for _, name := range common {
			src := filepath.Join(source, name)
			if _, ok := sourceSeen[src]; !ok {
				sourceSeen[src] = struct{}{}
				sourceRoots = append(sourceRoots, src)
			}
			dst := filepath.Join(dest, name)
			if _, ok := destSeen[dst]; !ok {
				destSeen[dst] = struct{}{}
				destRoots = append(destRoots, dst)
			}
		}
	}

	if len(sourceRoots) == 0 {
		s.log.Info("No common subdirs, comparing roots directly")
		return []string{source}, dests, nil
	}
	return sourceRoots, destRoots, nil
}

func normalizeRoots(source string, dests []string) (string, []string, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve source path: %w", err)
	}

	absDests := make([]string, 0, len(dests))
	for _, dest := range dests {
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve destination path: %w", err)
		}
		if absDest == absSource {
			return "", nil, fmt.Errorf("source and destination are identical: %s", absSource)
		}
		absDests = append(absDests, absDest)
	}

	return absSource, absDests, nil
}
