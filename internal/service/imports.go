package service

import (
	"context"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/importer"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

const previewSampleSize = 10

type ImportStore interface {
	ExistingURLs(ctx context.Context, owner string) (map[string]string, error)
	CommitImport(ctx context.Context, owner string, items []domain.ImportedBookmark) (domain.ImportOutcome, []domain.Bookmark, error)
}

type ImportService struct {
	store   ImportStore
	events  EventTracker
	metrics *metrics.Collector
	log     logger.Logger
}

func NewImportService(store ImportStore, events EventTracker, m *metrics.Collector, log logger.Logger) *ImportService {
	return &ImportService{store: store, events: orNopTracker(events), metrics: m, log: log}
}

type ImportOptions struct {
	SkipDuplicates bool
	DefaultFolder  string
}

// ImportPreview describes what a commit would do without the full payload.
type ImportPreview struct {
	Format         importer.Format           `json:"format"`
	TotalProcessed int                       `json:"totalProcessed"`
	Summary        importer.Summary          `json:"summary"`
	Folders        []string                  `json:"folders"`
	Errors         []string                  `json:"errors"`
	Sample         []domain.ImportedBookmark `json:"sample"`
}

type ImportReport struct {
	domain.ImportOutcome
	Format         importer.Format  `json:"format"`
	TotalProcessed int              `json:"totalProcessed"`
	Summary        importer.Summary `json:"summary"`
	Errors         []string         `json:"errors"`
}

func (s *ImportService) parse(ctx context.Context, owner, name string, data []byte, opts ImportOptions) (importer.Result, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return importer.Result{}, apperror.ValidationFailed("file", "file is empty")
	}
	format := importer.Detect(name, data)
	if format == importer.FormatUnknown {
		return importer.Result{}, apperror.ValidationFailed("file", "unsupported file format, use html, json, csv or yaml")
	}

	urls, err := s.store.ExistingURLs(ctx, owner)
	if err != nil {
		return importer.Result{}, err
	}
	existing := make(map[string]bool, len(urls))
	for u := range urls {
		existing[u] = true
	}

	res, err := importer.Parse(ctx, format, data, importer.Options{
		SkipDuplicates: opts.SkipDuplicates,
		DefaultFolder:  strings.TrimSpace(opts.DefaultFolder),
		Existing:       existing,
	})
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return importer.Result{}, apperror.ValidationFailed("file", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return importer.Result{}, err
	case err != nil:
		return importer.Result{}, apperror.ValidationFailed("file", "could not read "+string(format)+" file: "+err.Error())
	}
	return res, nil
}

func (s *ImportService) Preview(ctx context.Context, owner, name string, data []byte, opts ImportOptions) (ImportPreview, error) {
	res, err := s.parse(ctx, owner, name, data, opts)
	if err != nil {
		return ImportPreview{}, err
	}
	sample := res.Bookmarks
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}
	return ImportPreview{
		Format:         res.Format,
		TotalProcessed: res.TotalProcessed,
		Summary:        res.Summary,
		Folders:        res.Folders,
		Errors:         res.Errors,
		Sample:         sample,
	}, nil
}

// Commit parses the file and writes its bookmarks, folders and tags for
// owner. URLs the owner already has are never written twice.
func (s *ImportService) Commit(ctx context.Context, owner, name string, data []byte, opts ImportOptions) (ImportReport, error) {
	res, err := s.parse(ctx, owner, name, data, opts)
	if err != nil {
		return ImportReport{}, err
	}

	outcome, created, err := s.store.CommitImport(ctx, owner, res.Bookmarks)
	if err != nil {
		return ImportReport{}, err
	}
	outcome.Failed = len(res.Errors)
	if opts.SkipDuplicates {
		outcome.Skipped += len(res.Duplicates)
	}

	s.metrics.Imported(string(res.Format))
	s.metrics.BookmarkCreated(len(created))
	for _, b := range created {
		s.events.Record(ctx, owner, domain.EventBookmarkAdded, map[string]any{
			"bookmark_id": b.ID,
			"url":         b.URL,
			"title":       b.Title,
			"source":      "import",
		})
	}
	s.log.Info("import committed",
		logger.String("owner", owner),
		logger.String("format", string(res.Format)),
		logger.Int("created", outcome.Created),
		logger.Int("skipped", outcome.Skipped),
		logger.Int("failed", outcome.Failed))

	return ImportReport{
		ImportOutcome:  outcome,
		Format:         res.Format,
		TotalProcessed: res.TotalProcessed,
		Summary:        res.Summary,
		Errors:         res.Errors,
	}, nil
}
