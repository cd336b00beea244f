// Package converter coordinates the conversion run: read the source
// document, run the zettel pipeline, persist one file per note, and bring
// the optional index in line with the result.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/zettelport/internal/apperr"
	"github.com/starford/zettelport/internal/checksum"
	"github.com/starford/zettelport/internal/index"
	"github.com/starford/zettelport/internal/storage"
	"github.com/starford/zettelport/internal/zettel"
)

// Collision policies for two distinct titles sanitizing to the same filename.
const (
	CollisionOverwrite = "overwrite" // last record wins, warning logged
	CollisionFail      = "fail"      // abort before anything is written
)

// writeConcurrency bounds the parallel file-write stage.
const writeConcurrency = 8

// Service runs conversions. The index is optional; a nil NoteIndex disables
// indexing.
type Service struct {
	markers     zettel.Markers
	onCollision string
	logger      *slog.Logger
	db          index.NoteIndex
}

// New creates a conversion service.
func New(logger *slog.Logger, markers zettel.Markers, onCollision string, db index.NoteIndex) *Service {
	if onCollision == "" {
		onCollision = CollisionOverwrite
	}
	return &Service{
		markers:     markers,
		onCollision: onCollision,
		logger:      logger,
		db:          db,
	}
}

// Result summarises one conversion run.
type Result struct {
	Created []string      // filenames written, in processing order
	Skipped []zettel.Skip // malformed blocks discarded with a warning
}

// note is one fully transformed record ready to persist.
type note struct {
	record   zettel.Record
	filename string
	content  string
	links    []string
	body     string // rewritten body, kept for the index
}

// Convert runs the full pipeline from inputPath into outputDir.
// Record-level problems are logged and skipped; a missing input, a document
// with no title markers, or (under the "fail" policy) a filename collision
// aborts the run.
func (s *Service) Convert(ctx context.Context, inputPath, outputDir string) (*Result, error) {
	data, err := storage.ReadSource(inputPath)
	if err != nil {
		return nil, err
	}

	extracted, err := zettel.Extract(string(data), s.markers)
	if err != nil {
		return nil, err
	}
	for _, skip := range extracted.Skipped {
		s.logger.Warn("skipping malformed block",
			slog.Int("block", skip.Block),
			slog.String("reason", skip.Reason))
	}
	s.logger.Info("extracted zettels",
		slog.Int("count", len(extracted.Records)),
		slog.Int("skipped", len(extracted.Skipped)))

	notes := make([]note, len(extracted.Records))
	for i, rec := range extracted.Records {
		body := zettel.RewriteLinks(rec.Body, extracted.Titles)
		notes[i] = note{
			record:   rec,
			filename: rec.SanitizedTitle + ".md",
			content:  zettel.FormatContent(body),
			links:    zettel.ExtractLinks(body),
			body:     body,
		}
	}

	notes, err = s.resolveCollisions(notes)
	if err != nil {
		return nil, err
	}

	dir, err := storage.NewDir(outputDir)
	if err != nil {
		return nil, err
	}

	// Every surviving note has a distinct filename at this point, so the
	// write stage can fan out safely.
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)
	for _, n := range notes {
		g.Go(func() error {
			if err := dir.Write(n.filename, n.content); err != nil {
				return err
			}
			s.logger.Info("created", slog.String("file", n.filename))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.db != nil {
		if err := s.reindex(notes); err != nil {
			return nil, err
		}
	}

	result := &Result{Skipped: extracted.Skipped}
	for _, n := range notes {
		result.Created = append(result.Created, n.filename)
	}
	s.logger.Info("conversion complete",
		slog.Int("files", len(result.Created)),
		slog.String("output", dir.Root()))
	return result, nil
}

// resolveCollisions applies the collision policy to notes whose sanitized
// titles coincide. Under "overwrite" the last record in processing order
// survives (matching the sequential last-writer-wins behavior) and a warning
// names both originals. Under "fail" the run aborts before any write.
func (s *Service) resolveCollisions(notes []note) ([]note, error) {
	last := make(map[string]int, len(notes))
	for i, n := range notes {
		if prev, ok := last[n.filename]; ok {
			if s.onCollision == CollisionFail {
				return nil, fmt.Errorf("converter: titles %q and %q both map to %s: %w",
					notes[prev].record.OriginalTitle, n.record.OriginalTitle,
					n.filename, apperr.ErrDuplicateTitle)
			}
			s.logger.Warn("sanitized title collision, later note wins",
				slog.String("file", n.filename),
				slog.String("earlier_title", notes[prev].record.OriginalTitle),
				slog.String("later_title", n.record.OriginalTitle))
		}
		last[n.filename] = i
	}
	if len(last) == len(notes) {
		return notes, nil
	}

	out := make([]note, 0, len(last))
	for i, n := range notes {
		if last[n.filename] == i {
			out = append(out, n)
		}
	}
	return out, nil
}

// reindex resets the index and records every written note and its links.
func (s *Service) reindex(notes []note) error {
	if err := s.db.Reset(); err != nil {
		return err
	}
	now := time.Now()
	for _, n := range notes {
		row := index.NoteRow{
			Filename:      n.filename,
			Title:         n.record.SanitizedTitle,
			OriginalTitle: n.record.OriginalTitle,
			Checksum:      checksum.Sum([]byte(n.content)),
			UpdatedAt:     now,
		}
		if err := s.db.UpsertNote(row, n.body, n.links); err != nil {
			return err
		}
	}
	return nil
}
