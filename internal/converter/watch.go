package converter

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/zettelport/internal/checksum"
)

// debounceDelay coalesces the burst of events an editor save produces.
const debounceDelay = 200 * time.Millisecond

// Watch runs an initial conversion and then reconverts whenever the input
// document changes, until ctx is cancelled. Editors commonly replace files
// via rename, so the watch is placed on the input's directory and events are
// filtered to the input path. Reconversion is skipped when the input bytes
// are unchanged (same checksum).
func (s *Service) Watch(ctx context.Context, inputPath, outputDir string) error {
	if _, err := s.Convert(ctx, inputPath, outputDir); err != nil {
		return err
	}
	lastSum := checksum.File(inputPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(absInput)); err != nil {
		return err
	}

	s.logger.Info("watching input", slog.String("input", absInput))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	scheduleConvert := func() {
		if debounce == nil {
			debounce = time.NewTimer(debounceDelay)
			debounceCh = debounce.C
		} else {
			debounce.Reset(debounceDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			s.logger.Info("watch stopped")
			return nil

		case <-debounceCh:
			sum := checksum.File(absInput)
			if sum == "" || sum == lastSum {
				continue
			}
			lastSum = sum
			if _, err := s.Convert(ctx, absInput, outputDir); err != nil {
				s.logger.Warn("reconversion failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != absInput {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleConvert()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watch error", slog.String("error", watchErr.Error()))
		}
	}
}
