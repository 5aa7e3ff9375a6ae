package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterNoRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 0})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	for i := 0; i < 100; i++ {
		if _, err := rw.Write([]byte(strings.Repeat("x", 1024) + "\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	rw.Close()

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("rotation occurred with MaxSizeMB=0")
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	// Three megabytes of writes across a 1 MB limit forces rotations.
	chunk := []byte(strings.Repeat("y", 64*1024))
	for i := 0; i < 48; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	rw.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("current log file missing: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("first backup missing: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backup beyond MaxBackups retained")
	}
}

func TestRotatingWriterWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	rw, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	rw.Close()

	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("Write() after Close() should fail")
	}
}
