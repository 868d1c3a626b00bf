package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ShoshinNikita/rthumb/pkg/metrics"
	"github.com/ShoshinNikita/rthumb/pkg/rlog"
	"github.com/google/uuid"
)

var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrInvalidName = errors.New("invalid cache file name")
)

// DiskCache treats files in a directory as cache entries: a file exists - the entry
// is cached. Entries never expire.
type DiskCache struct {
	absDir string
}

func NewDiskCache(dir string) (*DiskCache, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("couldn't get absolute path: %w", err)
	}
	return &DiskCache{
		absDir: absDir,
	}, nil
}

// Dir returns the absolute path of the cache directory.
func (c *DiskCache) Dir() string {
	return c.absDir
}

// Check can be used to check whether a file is cached. If the file is not cached, it returns [ErrCacheMiss].
func (c *DiskCache) Check(name string) error {
	path, err := c.GetFilepath(name)
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.CacheMisses.Inc()
			return ErrCacheMiss
		}

		metrics.CacheErrors.Inc()
		return err
	}

	metrics.CacheHits.Inc()
	return nil
}

// GetFilepath returns the absolute path of the cache file with the passed name. The name
// can contain subdirectories, but must not point outside of the cache directory.
func (c *DiskCache) GetFilepath(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(c.absDir, name), nil
}

// Write creates the cache file with the passed name and the content written by writeFn.
// The content is written to a temp file first and then renamed, so [DiskCache.Check]
// never reports partially written files. The temp file is created next to the cache
// file, so the rename never crosses filesystems. Like [os.Create], the file is created
// with mode 0666 before umask. Directories are not created: a missing directory is an error.
func (c *DiskCache) Write(name string, writeFn func(w io.Writer) error) (err error) {
	path, err := c.GetFilepath(name)
	if err != nil {
		return err
	}

	// os.CreateTemp always uses 0600.
	tempPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	tempFile, err := os.OpenFile(tempPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return fmt.Errorf("couldn't create temp file: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}

		// Close can fail if the file is already closed, ignore it.
		_ = tempFile.Close()
		if err := os.Remove(tempFile.Name()); err != nil {
			rlog.Errorf("couldn't remove temp file %q: %s", tempFile.Name(), err)
		}
	}()

	if err := writeFn(tempFile); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("couldn't close temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), path); err != nil {
		return fmt.Errorf("couldn't rename temp file: %w", err)
	}
	return nil
}

// Remove removes the cache file with the passed name. Cache files are never removed
// automatically, use it only for manual cleanup.
func (c *DiskCache) Remove(name string) error {
	path, err := c.GetFilepath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
