package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-image/internal/chart"
	"github.com/i474232898/weather-image/internal/report"
)

type stubBuilder struct {
	fail map[string]bool
}

func (b stubBuilder) Build(_ context.Context, location string, _ int) (report.Report, error) {
	if b.fail[location] {
		return report.Report{}, errors.New("provider down")
	}
	return report.Report{Query: location, Charts: []chart.Descriptor{{Name: chart.NameTemperature}}}, nil
}

type recordingStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *recordingStore) SaveReport(r report.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r.Query)
}

type recordingWriter struct {
	mu    sync.Mutex
	paths []string
}

func (w *recordingWriter) WriteFiles(outputPath string, _ []chart.Descriptor) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append(w.paths, outputPath)
	return []string{outputPath}, nil
}

func TestRunOnce(t *testing.T) {
	st := &recordingStore{}
	wr := &recordingWriter{}
	s := New([]string{"Calgary", "Banff, AB", "broken"}, time.Hour,
		stubBuilder{fail: map[string]bool{"broken": true}}, st, wr, "/tmp/out")

	s.RunOnce()

	assert.ElementsMatch(t, []string{"Calgary", "Banff, AB"}, st.saved)
	assert.ElementsMatch(t, []string{
		filepath.Join("/tmp/out", "calgary.svg"),
		filepath.Join("/tmp/out", "banff-ab.svg"),
	}, wr.paths)
}

func TestRunOnceWithoutOutputDir(t *testing.T) {
	st := &recordingStore{}
	wr := &recordingWriter{}
	s := New([]string{"Calgary"}, time.Hour, stubBuilder{}, st, wr, "")

	s.RunOnce()

	assert.Equal(t, []string{"Calgary"}, st.saved)
	assert.Empty(t, wr.paths)
}

func TestStartWithoutLocations(t *testing.T) {
	s := New(nil, time.Hour, stubBuilder{}, &recordingStore{}, nil, "")
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStartRunsImmediately(t *testing.T) {
	st := &recordingStore{}
	s := New([]string{"Calgary"}, time.Hour, stubBuilder{}, st, nil, "")
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return len(st.saved) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "calgary", Slug("Calgary"))
	assert.Equal(t, "51-05-114-07", Slug("51.05,-114.07"))
	assert.Equal(t, "location", Slug("!!!"))
}
