// Package lock keeps two watchdog processes from reading the same serial
// port. Each held port has a small JSON lock file describing its holder.
package lock

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rileyhilliard/watchdog/internal/errors"
)

// Lock represents a held serial port.
type Lock struct {
	Path string    // The lock file
	Info *LockInfo // Info about the lock holder (us)
}

// FilePath returns the lock file used for port inside dir.
func FilePath(dir, port string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "watchdog-"+sanitize(port)+".lock")
}

// TryAcquire takes the lock for port without waiting. A lock left behind by
// a process that no longer runs on this host is removed and taken over. If a
// live process holds it, the returned error wraps ErrLocked.
func TryAcquire(dir, port, command string) (*Lock, error) {
	path := FilePath(dir, port)
	info := NewLockInfo(port, command)

	data, err := info.Marshal()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Failed to serialize lock info",
			"This is unexpected - please report it.")
	}

	// One retry after clearing a stale lock.
	for attempt := 0; attempt < 2; attempt++ {
		err := writeExclusive(path, data)
		if err == nil {
			return &Lock{Path: path, Info: info}, nil
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return nil, errors.WrapWithCode(err, errors.ErrTransport,
				"Can't create lock file "+path,
				"Check permissions on "+filepath.Dir(path))
		}

		holder, readErr := readInfo(path)
		if readErr == nil && holderAlive(holder) {
			return nil, errors.WrapWithCode(ErrLocked, errors.ErrTransport,
				fmt.Sprintf("%s is in use by %s", port, holder),
				"Stop the other watchdog first. If it's gone, remove "+path)
		}
		if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapWithCode(err, errors.ErrTransport,
				"Can't remove stale lock file "+path,
				"Check permissions, or remove it by hand")
		}
	}

	return nil, errors.New(errors.ErrTransport,
		"Lost the race for "+port,
		"Another watchdog started at the same moment; try again")
}

// Release removes the lock file if it still belongs to us.
func (l *Lock) Release() error {
	if l == nil {
		return nil // Nothing to release
	}

	current, err := readInfo(l.Path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrTransport,
			"Can't read lock file "+l.Path, "")
	}
	if current.PID != l.Info.PID || current.Hostname != l.Info.Hostname {
		return nil
	}

	if err := os.Remove(l.Path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.WrapWithCode(err, errors.ErrTransport,
			"Can't remove lock file "+l.Path,
			"Remove it by hand")
	}
	return nil
}

// Holder returns who holds port, or nil when it's free or the holder is gone.
func Holder(dir, port string) *LockInfo {
	info, err := readInfo(FilePath(dir, port))
	if err != nil || !holderAlive(info) {
		return nil
	}
	return info
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func readInfo(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// processAlive is replaced in tests.
var processAlive = func(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes without delivering anything. EPERM still means alive.
	return !stderrors.Is(p.Signal(syscall.Signal(0)), os.ErrProcessDone)
}

// holderAlive reports whether info describes a process that still runs.
// Holders on another host can't be probed and are assumed alive.
func holderAlive(info *LockInfo) bool {
	host, err := os.Hostname()
	if err != nil || info.Hostname != host {
		return true
	}
	if info.PID <= 0 {
		return false
	}
	return processAlive(info.PID)
}

// sanitize turns a device path into a file-name fragment.
func sanitize(port string) string {
	port = strings.TrimPrefix(port, "/dev/")
	var b strings.Builder
	for _, c := range port {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			b.WriteRune(c)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "port"
	}
	return b.String()
}
