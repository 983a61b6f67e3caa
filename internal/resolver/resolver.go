package resolver

import (
	"context"
	"fmt"
	"sort"

	"orphansweep/internal/fingerprint"
	"orphansweep/internal/scanner"
	"orphansweep/pkg/db/store"
	"orphansweep/pkg/log"
)

// Resolver composes the metadata fast filter and the content filter into
// the orphan detection engine. A source file is an orphan when no
// destination file shares its content fingerprint.
type Resolver struct {
	pipeline *fingerprint.Pipeline
	store    store.FingerprintStore
	log      log.LoggerService
}

func New(pipeline *fingerprint.Pipeline, st store.FingerprintStore, logger log.LoggerService) *Resolver {
	return &Resolver{
		pipeline: pipeline,
		store:    st,
		log:      logger,
	}
}

// metaKey is the zero-I/O identity used by the fast filter. Equal size and
// mtime means the file is almost certainly an unchanged copy.
type metaKey struct {
	size      int64
	modTimeNS int64
}

// Resolve returns the source records with no byte-identical counterpart in
// dest, sorted by path. The fast filter runs entirely in memory; only the
// surviving candidates (and the destination files that could still match
// them by size) are fingerprinted.
func (r *Resolver) Resolve(ctx context.Context, source, dest []scanner.FileRecord) ([]scanner.FileRecord, error) {
	destMeta := make(map[metaKey]struct{}, len(dest))
	for _, rec := range dest {
		destMeta[metaKey{rec.Size, rec.ModTime.UnixNano()}] = struct{}{}
	}

	var candidates []scanner.FileRecord
	for _, rec := range source {
		if _, ok := destMeta[metaKey{rec.Size, rec.ModTime.UnixNano()}]; !ok {
			candidates = append(candidates, rec)
		}
	}

	r.log.Info("Metadata fast filter: %d of %d source files are orphan candidates",
		len(candidates), len(source))

	if len(candidates) == 0 {
		return nil, nil
	}

	candidateIndex, err := r.pipeline.HashAll(ctx, "candidates", candidates)
	if err != nil {
		return nil, err
	}

	// Destination files that cannot match any candidate by size can never
	// share a fingerprint, so they are never opened.
	candidateSizes := make(map[int64]struct{}, len(candidates))
	for _, rec := range candidates {
		candidateSizes[rec.Size] = struct{}{}
	}

	var destToHash []scanner.FileRecord
	for _, rec := range dest {
		if _, ok := candidateSizes[rec.Size]; ok {
			destToHash = append(destToHash, rec)
		}
	}

	destIndex, err := r.pipeline.HashAll(ctx, "destinations", destToHash)
	if err != nil {
		return nil, err
	}

	// Persist every fingerprint that fed this decision before reporting it.
	if err := r.store.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush fingerprint cache: %w", err)
	}

	var orphans []scanner.FileRecord
	for digest, rec := range candidateIndex.All() {
		if match, ok := destIndex.Get(digest); ok {
			r.log.Debug("Content match: %s has counterpart %s", rec.Path, match.Path)
			continue
		}
		orphans = append(orphans, rec)
	}

	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].Path < orphans[j].Path
	})

	return orphans, nil
}
