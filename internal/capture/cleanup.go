package capture

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
)

// Info describes one recording on disk.
type Info struct {
	Path    string
	Name    string
	Source  string
	ModTime time.Time
	Size    int64
}

// Cleanup removes old recordings per the retention settings in cfg.
// MaxSizeMB is applied first, then KeepDays, then KeepRuns.
func Cleanup(cfg config.CaptureConfig) error {
	baseDir := config.ExpandPath(cfg.Dir)
	if baseDir == "" {
		return nil
	}
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		return nil
	}

	if cfg.MaxSizeMB > 0 {
		if err := CleanBySize(baseDir, int64(cfg.MaxSizeMB)*1024*1024); err != nil {
			return err
		}
	}
	if cfg.KeepDays > 0 {
		if err := CleanByAge(baseDir, time.Duration(cfg.KeepDays)*24*time.Hour); err != nil {
			return err
		}
	}
	if cfg.KeepRuns > 0 {
		if err := CleanByRuns(baseDir, cfg.KeepRuns); err != nil {
			return err
		}
	}
	return nil
}

// CleanByRuns keeps the newest keep recordings of each source.
func CleanByRuns(baseDir string, keep int) error {
	if keep <= 0 {
		return nil
	}

	files, err := list(baseDir)
	if err != nil {
		return err
	}

	groups := make(map[string][]Info)
	for _, f := range files {
		groups[f.Source] = append(groups[f.Source], f)
	}

	for _, group := range groups {
		if len(group) <= keep {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].ModTime.After(group[j].ModTime)
		})
		for _, f := range group[keep:] {
			if err := remove(f.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanByAge deletes recordings older than maxAge.
func CleanByAge(baseDir string, maxAge time.Duration) error {
	if maxAge <= 0 {
		return nil
	}

	files, err := list(baseDir)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	for _, f := range files {
		if f.ModTime.Before(cutoff) {
			if err := remove(f.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanBySize deletes the oldest recordings until the total is at most maxBytes.
func CleanBySize(baseDir string, maxBytes int64) error {
	if maxBytes <= 0 {
		return nil
	}

	files, err := list(baseDir)
	if err != nil {
		return err
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}
	if total <= maxBytes {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	for _, f := range files {
		if total <= maxBytes {
			break
		}
		if err := remove(f.Path); err != nil {
			return err
		}
		total -= f.Size
	}
	return nil
}

// CleanAll removes every recording in baseDir and returns how many it removed.
// Other files in the directory are left alone.
func CleanAll(baseDir string) (int, error) {
	files, err := list(config.ExpandPath(baseDir))
	if err != nil {
		return 0, err
	}
	for i, f := range files {
		if err := remove(f.Path); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

// List returns the recordings in baseDir, newest first.
func List(baseDir string) ([]Info, error) {
	files, err := list(config.ExpandPath(baseDir))
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// list reads recordings from baseDir. A missing directory has none.
func list(baseDir string) ([]Info, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't read capture directory "+baseDir,
			"Check your permissions.")
	}

	var files []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		source, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, Info{
			Path:    filepath.Join(baseDir, entry.Name()),
			Name:    entry.Name(),
			Source:  source,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return files, nil
}

// parseName splits "<source>-YYYYMMDD-HHMMSS.log" and reports whether name
// has that shape.
func parseName(name string) (string, bool) {
	stem, ok := strings.CutSuffix(name, ".log")
	if !ok {
		return "", false
	}
	// "-" + 15 character timestamp
	if len(stem) < len(timestampLayout)+2 {
		return "", false
	}
	cut := len(stem) - len(timestampLayout)
	if stem[cut-1] != '-' {
		return "", false
	}
	if _, err := time.Parse(timestampLayout, stem[cut:]); err != nil {
		return "", false
	}
	return stem[:cut-1], true
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't delete capture "+path,
			"Check your permissions.")
	}
	return nil
}
