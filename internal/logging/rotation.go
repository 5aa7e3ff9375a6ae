package logging

import (
	"fmt"
	"os"
	"sync"
)

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// MaxSizeMB is the maximum size of a log file in megabytes before
	// rotation. A value of 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is the number of old log files to keep.
	MaxBackups int
}

// DefaultRotationConfig returns a RotationConfig with sensible defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter writes to a file and rotates it when it exceeds the
// configured size. Rotated files are renamed path.1, path.2, ... with the
// highest number being the oldest. It is safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	filePath   string
	maxSizeB   int64
	maxBackups int

	file        *os.File
	currentSize int64
}

// NewRotatingWriter opens (or creates) the log file at filePath. If
// config.MaxSizeMB is 0 the writer never rotates.
func NewRotatingWriter(filePath string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		filePath:   filePath,
		maxSizeB:   int64(config.MaxSizeMB) * 1024 * 1024,
		maxBackups: config.MaxBackups,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *RotatingWriter) open() error {
	file, err := os.OpenFile(rw.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	rw.file = file
	rw.currentSize = info.Size()
	return nil
}

// Write appends to the log file, rotating first if the write would push the
// file over the size limit.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("rotating writer is closed")
	}

	if rw.maxSizeB > 0 && rw.currentSize+int64(len(p)) > rw.maxSizeB {
		if err := rw.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := rw.file.Write(p)
	rw.currentSize += int64(n)
	return n, err
}

// rotate closes the current file, shifts backups, and opens a fresh file.
// Caller must hold rw.mu.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return err
	}
	rw.file = nil

	// Shift existing backups: path.(n-1) -> path.n, oldest dropped.
	for i := rw.maxBackups; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", rw.filePath, i-1)
		if i == 1 {
			src = rw.filePath
		}
		dst := fmt.Sprintf("%s.%d", rw.filePath, i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}
	if rw.maxBackups == 0 {
		if err := os.Remove(rw.filePath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return rw.open()
}

// Close syncs and closes the underlying file.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	if err := rw.file.Sync(); err != nil {
		rw.file.Close()
		rw.file = nil
		return err
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}
