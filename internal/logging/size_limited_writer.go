package logging

import (
	"fmt"
	"os"
	"sync"
)

// sizeLimitedWriter caps the active log at maxBytes. On overflow the file is
// shifted into numbered backups (log.1 newest) and the oldest one falls off.
type sizeLimitedWriter struct {
	path     string
	maxBytes int64
	backups  int

	mu   sync.Mutex
	file *os.File
	size int64
}

func newSizeLimitedWriter(path string, maxMB, backups int) (*sizeLimitedWriter, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	if backups < 0 {
		backups = 0
	}
	w := &sizeLimitedWriter{path: path, maxBytes: int64(maxMB) << 20, backups: backups}
	if err := w.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *sizeLimitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		if err := w.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	// a single line larger than the cap is still written whole
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *sizeLimitedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeFile()
}

func (w *sizeLimitedWriter) closeFile() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *sizeLimitedWriter) rotate() error {
	_ = w.closeFile()
	if w.backups == 0 {
		return w.open(os.O_TRUNC)
	}
	for i := w.backups - 1; i >= 1; i-- {
		if err := renameIfExists(backupName(w.path, i), backupName(w.path, i+1)); err != nil {
			return err
		}
	}
	if err := renameIfExists(w.path, backupName(w.path, 1)); err != nil {
		return err
	}
	return w.open(os.O_TRUNC)
}

func (w *sizeLimitedWriter) open(mode int) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file, w.size = f, info.Size()
	return nil
}

func backupName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }

func renameIfExists(from, to string) error {
	if err := os.Rename(from, to); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
