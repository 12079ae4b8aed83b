package scheduler

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-image/internal/chart"
	"github.com/i474232898/weather-image/internal/report"
)

// ReportBuilder builds a report for location text.
type ReportBuilder interface {
	Build(ctx context.Context, location string, hours int) (report.Report, error)
}

// ReportSaver stores the latest report per location.
type ReportSaver interface {
	SaveReport(r report.Report)
}

// ChartWriter renders chart descriptors to files.
type ChartWriter interface {
	WriteFiles(outputPath string, descriptors []chart.Descriptor) ([]string, error)
}

// Scheduler periodically rebuilds reports for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	builder   ReportBuilder
	store     ReportSaver
	writer    ChartWriter
	locations []string
	interval  time.Duration
	outputDir string
	timeout   time.Duration
}

// New creates a new Scheduler. writer may be nil or outputDir empty to skip
// writing image files.
func New(locations []string, interval time.Duration, builder ReportBuilder, store ReportSaver, writer ChartWriter, outputDir string) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		builder:   builder,
		store:     store,
		writer:    writer,
		locations: locations,
		interval:  interval,
		outputDir: outputDir,
		timeout:   time.Minute,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		slog.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured location concurrently.
func (s *Scheduler) RunOnce() {
	slog.Info("scheduler: refreshing reports", "locations", len(s.locations))

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			s.refresh(loc)
		}(loc)
	}
	wg.Wait()

	slog.Info("scheduler: refresh complete")
}

func (s *Scheduler) refresh(loc string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	r, err := s.builder.Build(ctx, loc, 0)
	if err != nil {
		slog.Error("scheduler: report failed", "location", loc, "error", err)
		return
	}
	s.store.SaveReport(r)

	if s.writer == nil || s.outputDir == "" {
		return
	}
	paths, err := s.writer.WriteFiles(filepath.Join(s.outputDir, Slug(loc)+".svg"), r.Charts)
	if err != nil {
		slog.Error("scheduler: writing charts failed", "location", loc, "error", err)
		return
	}
	slog.Debug("scheduler: charts written", "location", loc, "files", paths)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns location text into a file-name friendly token.
func Slug(location string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(location), "-"), "-")
	if slug == "" {
		return "location"
	}
	return slug
}
