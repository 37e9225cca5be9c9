// Package lock keeps a single interactive client per profile.
package lock

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const fileName = "wpptui.lock"

// HeldError is returned when another process holds the profile lock.
type HeldError struct {
	Holder Holder
	Path   string
}

func (e *HeldError) Error() string {
	if e.Holder.PID == 0 {
		return fmt.Sprintf("profile in use (%s)", e.Path)
	}
	return fmt.Sprintf("profile in use by PID %d since %s (%s)",
		e.Holder.PID, e.Holder.Started.Local().Format(time.DateTime), e.Path)
}

// Holder describes the process recorded in a lock file.
type Holder struct {
	PID     int
	Backend string
	Started time.Time
}

// Lock is an acquired profile lock.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the exclusive lock in dir, recording the current process and
// the backend it talks to. It fails with *HeldError if another process holds it.
func Acquire(dir, backend string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("lock: create dir: %w", err)
	}
	path := filepath.Join(dir, fileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("lock: open: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		holder, _ := Read(path)
		_ = f.Close()
		return nil, &HeldError{Holder: holder, Path: path}
	}

	h := Holder{PID: os.Getpid(), Backend: backend, Started: time.Now().UTC()}
	if err := write(f, h); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock: write: %w", err)
	}
	return &Lock{file: f, path: path}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock and removes the file. Nil and released locks are no-ops.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

func write(f *os.File, h Holder) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f, "pid=%d\nbackend=%s\nstarted=%s\n", h.PID, h.Backend, h.Started.Format(time.RFC3339))
	return err
}

// Read parses the holder recorded at path. Unknown keys are ignored.
func Read(path string) (Holder, error) {
	f, err := os.Open(path)
	if err != nil {
		return Holder{}, err
	}
	defer func() { _ = f.Close() }()

	var h Holder
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			h.PID, _ = strconv.Atoi(value)
		case "backend":
			h.Backend = value
		case "started":
			h.Started, _ = time.Parse(time.RFC3339, value)
		}
	}
	return h, sc.Err()
}
