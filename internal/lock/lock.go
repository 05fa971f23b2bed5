// Package lock keeps a single roadplan process in charge of plan changes.
// The holder writes its pid to a lockfile in the config directory; a stale
// lockfile whose process is gone (or is not roadplan) is taken over.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	linkFunc        = os.Link
)

var ErrHeld = errors.New("another roadplan session is running")

// Lock is a held lockfile.
type Lock struct {
	path string
	pid  int
}

// Path returns the lockfile location under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, constants.LockfileName)
}

// Acquire takes the lock in configDir, failing with ErrHeld while a live
// roadplan process other than this one owns it.
func Acquire(configDir string) (*Lock, error) {
	return acquire(configDir, getpidFunc())
}

func acquire(configDir string, pid int) (*Lock, error) {
	path := Path(configDir)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	content := fmt.Sprintf("%d|%s", pid, constants.AppName)

	// One retry after clearing a stale lockfile.
	for attempt := 0; attempt < 2; attempt++ {
		err := create(path, content)
		if err == nil {
			logger.Debug("lock acquired", "path", path, "pid", pid)
			return &Lock{path: path, pid: pid}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to write lockfile: %w", err)
		}

		observed, holder, err := readHolder(path)
		if err != nil {
			return nil, err
		}
		if holder == pid {
			return &Lock{path: path, pid: pid}, nil
		}
		if holder != 0 {
			return nil, fmt.Errorf("%w (pid %d)", ErrHeld, holder)
		}
		if err := takeOver(path, observed, pid); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w (lockfile contended)", ErrHeld)
}

// create writes content next to path and links it into place, so the
// lockfile never exists without a complete pid line.
func create(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return linkFunc(tmp.Name(), path)
}

// takeOver moves a stale lockfile aside. If the file moved aside is no
// longer the stale one, a live process won the race and it is put back.
func takeOver(path, observed string, pid int) error {
	aside := fmt.Sprintf("%s.%d.stale", path, pid)
	if err := os.Rename(path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to clear stale lockfile: %w", err)
	}
	defer os.Remove(aside)

	content, err := os.ReadFile(aside)
	if err != nil {
		return fmt.Errorf("failed to read stale lockfile: %w", err)
	}
	if string(content) != observed {
		if err := linkFunc(aside, path); err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to restore lockfile: %w", err)
		}
		return fmt.Errorf("%w (lockfile replaced)", ErrHeld)
	}
	logger.Warn("removed stale lockfile", "path", path, "content", observed)
	return nil
}

// Holder returns the pid of the live roadplan process holding the lock, or 0.
func Holder(configDir string) (int, error) {
	_, pid, err := readHolder(Path(configDir))
	return pid, err
}

func readHolder(path string) (string, int, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to read lockfile: %w", err)
	}
	content := string(raw)

	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 2 {
		logger.Warn("ignoring malformed lockfile", "content", content)
		return content, 0, nil
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		logger.Warn("ignoring lockfile with invalid pid", "pid", parts[0])
		return content, 0, nil
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return content, 0, nil
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		// pid was reused by an unrelated process
		return content, 0, nil
	}
	return content, pid, nil
}

// Release removes the lockfile if this lock still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(content), strconv.Itoa(l.pid)+"|") {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	logger.Debug("lock released", "path", l.path)
	return nil
}
