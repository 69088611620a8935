package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// rollingFile caps the active log file at maxBytes. lumberjack only counts
// in whole megabytes, so the byte budget is tracked here and rotation is
// forced through lumberjack, which keeps naming backups and pruning them to
// MaxBackups.
type rollingFile struct {
	mu       sync.Mutex
	lumber   *lumberjack.Logger
	maxBytes int64
	size     int64

	lastRotate time.Time
}

func newRollingFile(path string, maxBytes int64, backups int) (*rollingFile, error) {
	r := &rollingFile{
		lumber: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    1, // never reached, see Write
			MaxBackups: backups,
			LocalTime:  true,
		},
		maxBytes: maxBytes,
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		r.size = info.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("error inspecting log file %s: %w", path, err)
	}

	return r, nil
}

func (r *rollingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		r.waitForFreshBackupName()
		if err := r.lumber.Rotate(); err != nil {
			return 0, err
		}
		r.lastRotate = time.Now()
		r.size = 0
	}

	n, err := r.lumber.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rollingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lumber.Close()
}

// waitForFreshBackupName blocks until the wall clock leaves the millisecond
// of the previous rotation. lumberjack names backups by millisecond, and a
// second rotation inside the same one would rename over the newer backup.
func (r *rollingFile) waitForFreshBackupName() {
	if r.lastRotate.IsZero() {
		return
	}
	next := r.lastRotate.Round(0).Truncate(time.Millisecond).Add(time.Millisecond)
	if d := time.Until(next); d > 0 {
		time.Sleep(d)
	}
}
