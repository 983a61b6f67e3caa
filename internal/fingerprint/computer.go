package fingerprint

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"orphansweep/internal/config"
	"orphansweep/internal/scanner"
	"orphansweep/pkg/db/models"
	"orphansweep/pkg/db/store"
	"orphansweep/pkg/log"
)

// Computer derives content fingerprints, consulting and populating the
// persistent cache.
//
// Files at or above sampleThreshold are fingerprinted over three windows of
// sampleSize bytes (head, centered middle, tail) concatenated before
// hashing. Two large files that differ only in bytes strictly between the
// windows therefore share a fingerprint; that approximation is the price of
// keeping scan time flat for large media containers.
type Computer struct {
	store           store.FingerprintStore
	sampleThreshold int64
	sampleSize      int64
	log             log.LoggerService
}

func NewComputer(st store.FingerprintStore, cfg config.HashConfig, logger log.LoggerService) *Computer {
	return &Computer{
		store:           st,
		sampleThreshold: cfg.SampleThreshold,
		sampleSize:      cfg.SampleSize,
		log:             logger,
	}
}

// Compute returns the fingerprint for rec, reporting whether it came from
// the cache. File access failures surface as *fs.PathError wrapped errors;
// cache store failures surface as-is and are fatal to the caller.
func (c *Computer) Compute(ctx context.Context, rec scanner.FileRecord) (string, bool, error) {
	digest, err := c.store.Lookup(ctx, rec.Path, rec.ModTime, rec.Size)
	if err == nil {
		c.log.Debug("Cache hit: %s", rec.Name())
		return digest, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", false, err
	}

	c.log.Debug("Calculating fingerprint: %s", rec.Name())

	digest, err = c.hashFile(rec)
	if err != nil {
		return "", false, err
	}

	err = c.store.Enqueue(ctx, models.Fingerprint{
		Path:      rec.Path,
		ModTimeNS: rec.ModTime.UnixNano(),
		Size:      rec.Size,
		Digest:    digest,
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to enqueue fingerprint for %s: %w", rec.Path, err)
	}

	return digest, false, nil
}

func (c *Computer) hashFile(rec scanner.FileRecord) (string, error) {
	f, err := os.Open(rec.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := md5.New()

	if rec.Size >= c.sampleThreshold {
		offsets := []int64{
			0,
			max(0, rec.Size/2-c.sampleSize/2),
			max(0, rec.Size-c.sampleSize),
		}
		for _, offset := range offsets {
			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				return "", err
			}
			if _, err := io.CopyN(hasher, f, c.sampleSize); err != nil && err != io.EOF {
				return "", err
			}
		}
	} else {
		if _, err := io.Copy(hasher, f); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
