package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/export"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var exportHeaders = []string{"Title", "Type", "Start", "End"}

type countyItemSource interface {
	CountyItems(ctx context.Context, slug string) (*models.CountyRef, []ics.CalendarItem, error)
	CountyFeed(ctx context.Context, slug string, client *ClientInfo) (*Feed, error)
	NationalFeed(ctx context.Context) (*Feed, error)
}

type activeCountyLister interface {
	List(ctx context.Context, filter models.CountyFilter) ([]models.County, error)
}

type feedStore interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, opts export.PDFOptions) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders county calendars as CSV or PDF tables and publishes static feeds.
type ExportService struct {
	feeds    countyItemSource
	counties activeCountyLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(feeds countyItemSource, counties activeCountyLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{feeds: feeds, counties: counties, csv: csv, pdf: pdf, logger: logger}
}

// County renders one county's calendar in the requested format.
func (s *ExportService) County(ctx context.Context, slug, format string) (*ExportFile, error) {
	county, items, err := s.feeds.CountyItems(ctx, slug)
	if err != nil {
		return nil, err
	}
	dataset := BuildDataset(items)
	base := "calendar-scolar-" + county.Slug

	switch format {
	case FormatCSV:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case FormatPDF:
		body, err := s.pdf.Render(dataset, export.PDFOptions{
			Title:     CountyCalendarName(county.Name),
			Subtitle:  fmt.Sprintf("Generat la %s", time.Now().UTC().Format("02.01.2006")),
			Landscape: true,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

// BuildDataset turns calendar items into table rows ordered by start. Items the feed
// generator would skip are left out.
func BuildDataset(items []ics.CalendarItem) export.Dataset {
	skip := make(map[int]bool)
	for _, problem := range ics.Validate(items) {
		skip[problem.Index] = true
	}
	sorted := make([]ics.CalendarItem, 0, len(items))
	for i, item := range items {
		if !skip[i] {
			sorted = append(sorted, item)
		}
	}
	slices.SortStableFunc(sorted, func(a, b ics.CalendarItem) int { return a.StartDate.Compare(b.StartDate) })

	rows := make([]map[string]string, 0, len(sorted))
	for _, item := range sorted {
		layout := "2006-01-02 15:04"
		if ics.IsAllDay(item.Category, item.StartDate, item.EndDate) {
			layout = "2006-01-02"
		}
		end := ""
		if item.EndDate != nil {
			end = item.EndDate.UTC().Format(layout)
		}
		rows = append(rows, map[string]string{
			"Title": item.Title,
			"Type":  string(item.Category),
			"Start": item.StartDate.UTC().Format(layout),
			"End":   end,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

// PublishFeeds writes the national feed and one feed per active county into store.
// Static exports are not counted as subscriptions.
func (s *ExportService) PublishFeeds(ctx context.Context, store feedStore) ([]string, error) {
	national, err := s.feeds.NationalFeed(ctx)
	if err != nil {
		return nil, err
	}
	feeds := []*Feed{national}

	active := true
	counties, err := s.counties.List(ctx, models.CountyFilter{Active: &active})
	if err != nil {
		return nil, err
	}
	for _, county := range counties {
		feed, err := s.feeds.CountyFeed(ctx, county.Slug, nil)
		if err != nil {
			return nil, fmt.Errorf("county %s: %w", county.Slug, err)
		}
		feeds = append(feeds, feed)
	}

	written := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		if _, err := store.Save(feed.Filename, feed.Body); err != nil {
			return written, fmt.Errorf("write %s: %w", feed.Filename, err)
		}
		written = append(written, feed.Filename)
		s.logger.Info("feed exported", zap.String("file", feed.Filename), zap.Int("items", feed.Items))
	}
	return written, nil
}
