package corpus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"SeqSearch/internal/storage"
)

// DocumentExt is the extension of files picked up by LoadDir and Watch.
const DocumentExt = ".txt"

// LoadDir adds every *.txt file in dir (non-recursive), named by base name,
// with the default analyzer. It returns the number of documents that were
// added or changed. Unreadable files are logged and skipped.
func (c *Corpus) LoadDir(dir string) (int, error) {
	files, err := storage.ListFiles(dir, DocumentExt)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, path := range files {
		ok, err := c.loadFile(path)
		if err != nil {
			c.logLoadError("failed to load document", path, err)
			continue
		}
		if ok {
			changed++
		}
	}
	c.logger.Info("directory loaded", "dir", dir, "files", len(files), "changed", changed)
	return changed, nil
}

// loadFile reports whether the corpus changed. A file whose checksum
// matches the stored document is not read into memory.
func (c *Corpus) loadFile(path string) (bool, error) {
	if prev, ok := c.Lookup(filepath.Base(path)); ok && prev.Analyzer == c.config.DefaultAnalyzer {
		sum, err := storage.ComputeFileChecksum(path)
		if err != nil {
			return false, err
		}
		if sum == prev.Checksum {
			return false, nil
		}
	}
	data, err := storage.ReadFileLimited(path, c.config.MaxDocumentBytes)
	if err != nil {
		return false, err
	}
	_, changed, err := c.put(filepath.Base(path), data, "")
	return changed, err
}

// Watch keeps the corpus in sync with dir until ctx is done. Created or
// written *.txt files are (re)loaded; removed or renamed ones are dropped.
// Watcher errors are logged and watching continues.
func (c *Corpus) Watch(ctx context.Context, dir string) error {
	if !storage.DirExists(dir) {
		return fmt.Errorf("watch %s: %w", dir, ErrNotDirectory)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	c.logger.Info("watching directory", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			c.handleEvent(event)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("directory watcher error", "dir", dir, "error", err)
		}
	}
}

func (c *Corpus) handleEvent(event fsnotify.Event) {
	if filepath.Ext(event.Name) != DocumentExt {
		return
	}
	name := filepath.Base(event.Name)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if c.RemoveByName(name) {
			c.logger.Debug("document dropped", "path", event.Name, "op", event.Op.String())
		}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if !storage.FileExists(event.Name) {
			return
		}
		if _, err := c.loadFile(event.Name); err != nil {
			c.logLoadError("failed to reload document", event.Name, err)
		}
	}
}

// logLoadError logs oversized files at warn level and other failures at
// error level.
func (c *Corpus) logLoadError(msg, path string, err error) {
	if errors.Is(err, storage.ErrFileTooLarge) {
		c.logger.Warn("document skipped: file too large", "path", path, "limit", c.config.MaxDocumentBytes)
		return
	}
	c.logger.Error(msg, "path", path, "error", err)
}
