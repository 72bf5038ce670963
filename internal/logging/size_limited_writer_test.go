package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSizeLimitedWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	writer, err := newSizeLimitedWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() != 512*1024 {
		t.Fatalf("active log size = %d, want %d", info.Size(), 512*1024)
	}
	backup, err := os.Stat(path + ".1")
	if err != nil {
		t.Fatalf("stat backup: %v", err)
	}
	if backup.Size() != 1024*1024 {
		t.Fatalf("backup size = %d, want %d", backup.Size(), 1024*1024)
	}
}

func TestSizeLimitedWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	writer, err := newSizeLimitedWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := writer.Write([]byte("line\n")); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	_ = writer.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "line\n" {
		t.Fatalf("content = %q", raw)
	}
}

func writeChunks(t *testing.T, w *sizeLimitedWriter, n int) {
	t.Helper()
	chunk := make([]byte, 512*1024)
	for i := 0; i < n; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}
}

func TestSizeLimitedWriterShiftsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	writer, err := newSizeLimitedWriter(path, 1, 2)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()
	writeChunks(t, writer, 5)

	for _, name := range []string{path + ".1", path + ".2"} {
		info, err := os.Stat(name)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() != 1024*1024 {
			t.Fatalf("%s size = %d", name, info.Size())
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected no third backup, err = %v", err)
	}
}

func TestSizeLimitedWriterWithoutBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	writer, err := newSizeLimitedWriter(path, 1, 0)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()
	writeChunks(t, writer, 3)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() != 512*1024 {
		t.Fatalf("active log size = %d", info.Size())
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Fatalf("expected no backup, err = %v", err)
	}
}
