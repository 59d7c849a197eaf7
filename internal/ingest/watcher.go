package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/deepread-extract/constants"
)

type WatchConfig struct {
	Root         string                  // samples root; <Root>/<pt> is watched for each pt
	ProcessTypes []constants.ProcessType // directories to watch
	Debounce     time.Duration           // coalesce rapid create/write bursts
	Logger       *slog.Logger
}

// StartWatcher emits a Sample for every file created or rewritten in a watched
// process type directory. Events are coalesced per path for cfg.Debounce. Both
// channels close when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan Sample, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.ProcessTypes) == 0 {
		logger.Error("watcher start failed: no process types provided")
		return nil, nil, errors.New("no process types provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	dirs := make(map[string]constants.ProcessType, len(cfg.ProcessTypes))
	for _, pt := range cfg.ProcessTypes {
		dir := filepath.Join(cfg.Root, pt.String())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = w.Close()
			return nil, nil, err
		}
		if err := w.Add(dir); err != nil {
			logger.Error("failed to watch directory", "dir", dir, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
		dirs[filepath.Clean(dir)] = pt
	}
	logger.Info("watcher.started", "root", cfg.Root, "dirs", len(dirs), "debounce_ms", cfg.Debounce.Milliseconds())

	evCh := make(chan Sample, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("watcher close failed", "error", err)
			}
		}()

		pending := map[string]constants.ProcessType{}
		timer := time.NewTimer(time.Hour)
		timer.Stop()

		flush := func() bool {
			for p, pt := range pending {
				select {
				case evCh <- Sample{Path: p, ProcessType: pt}:
				case <-ctx.Done():
					return false
				}
				delete(pending, p)
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				pt, ok := dirs[filepath.Dir(e.Name)]
				if !ok || !candidate(e.Name) {
					continue
				}
				pending[e.Name] = pt
				if cfg.Debounce <= 0 {
					if !flush() {
						return
					}
					continue
				}
				timer.Reset(cfg.Debounce)
			case <-timer.C:
				if !flush() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// convertedFrom maps the extension of a page written by the converter to the
// source extensions it is written from.
var convertedFrom = map[string][]string{
	"jpg": {"pdf"},
	"png": {"heic", "heif"},
}

// candidate filters out hidden files, non-regular files and the pages the
// converter writes next to a PDF or HEIC source.
func candidate(path string) bool {
	if IsHidden(path) {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	return !hasConvertibleSibling(path)
}

func hasConvertibleSibling(path string) bool {
	sources, ok := convertedFrom[constants.NormalizeExt(filepath.Ext(path))]
	if !ok {
		return false
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if name == base || strings.TrimSuffix(name, filepath.Ext(name)) != stem {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(name))
		for _, src := range sources {
			if ext == src {
				return true
			}
		}
	}
	return false
}
