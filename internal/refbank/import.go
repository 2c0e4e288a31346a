package refbank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"ciff/internal/curve"
	"ciff/internal/input"
	"ciff/internal/logging"
)

// ErrImportLocked reports that another import holds the bank lock.
var ErrImportLocked = errors.New("another reference import is running")

// ImportFailure records a curve file that could not be imported.
type ImportFailure struct {
	Path string
	Err  error
}

// ImportResult summarises an ImportDir run.
type ImportResult struct {
	Labels   int
	Curves   int
	Failures []ImportFailure
}

// ImportDir imports every <label>/<name> curve file found under dir. Each
// subdirectory name is a catalog ID and each regular file inside it a
// reference curve named after its stem. Unreadable curves are recorded in the
// result and skipped. The import holds an exclusive lock on lockPath.
func (s *Store) ImportDir(ctx context.Context, dir, lockPath string, logger *slog.Logger) (ImportResult, error) {
	ctx = ensureContext(ctx)
	if logger == nil {
		logger = logging.NewNop()
	}
	var result ImportResult

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return result, fmt.Errorf("%w (lock %s)", ErrImportLocked, lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release import lock", logging.Error(err))
		}
	}()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("read bank source %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() || input.Hidden(entry.Name()) {
			continue
		}
		label := entry.Name()
		src, err := input.Resolve(filepath.Join(dir, label))
		if err != nil {
			return result, err
		}
		imported := 0
		for _, path := range src.Files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			loaded, err := curve.Load(path)
			if err == nil {
				err = s.Import(ctx, label, input.Stem(path), loaded.Curve)
			}
			if err != nil {
				if errors.Is(err, curve.ErrUnparsableFile) || errors.Is(err, curve.ErrOutOfRange) {
					logging.WarnWithContext(logger, "skipping reference curve", "bank_import_skip",
						logging.String("path", path),
						logging.Error(err),
						logging.String(logging.FieldImpact, "curve not available for refinement"),
					)
					result.Failures = append(result.Failures, ImportFailure{Path: path, Err: err})
					continue
				}
				return result, err
			}
			imported++
		}
		if imported > 0 {
			result.Labels++
			result.Curves += imported
			logger.Debug("imported reference curves",
				logging.String("label", label),
				logging.Int("curves", imported),
			)
		}
	}
	return result, nil
}
