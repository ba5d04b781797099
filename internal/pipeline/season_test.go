package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/pipeline"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSampleRecords(t *testing.T) []domain.StormRecord {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "ibtracs_sample.csv"))
	require.NoError(t, err, "read sample dataset")

	records, err := domain.ParseRecords(string(data))
	require.NoError(t, err)
	return records
}

func newSeasonService(t *testing.T) *pipeline.SeasonService {
	t.Helper()
	return pipeline.NewSeasonService(pipeline.StaticData(loadSampleRecords(t)), discardLogger(), newTestMetrics())
}

func TestSeasonService_SampleDataset(t *testing.T) {
	view, err := newSeasonService(t).Run(context.Background(), "2020")
	require.NoError(t, err)

	assert.Equal(t, 2020, view.Season)
	assert.False(t, view.NoData)
	assert.Empty(t, view.Error)

	ids := make([]string, 0, len(view.Rows))
	for _, row := range view.Rows {
		ids = append(ids, row.StormID)
	}
	if diff := cmp.Diff([]string{"2020263N15125", "2020275N10131", "2020306N15137"}, ids); diff != "" {
		t.Errorf("storm order mismatch (-want +got):\n%s", diff)
	}

	noul := view.Rows[0]
	assert.Equal(t, "NOUL", noul.Name)
	assert.Equal(t, 3, noul.ObservationCount)
	require.NotNil(t, noul.Lat)
	assert.InDelta(t, 15.2, *noul.Lat, 1e-9)
	require.NotNil(t, noul.StormSpeed)
	assert.InDelta(t, 10.0, *noul.StormSpeed, 1e-9)

	chanHom := view.Rows[1]
	assert.Nil(t, chanHom.StormSpeed, "first CHAN-HOM record has no speed")
	assert.Equal(t, 2, chanHom.ObservationCount)

	want := viewmodel.TableStats{TotalObservations: 7, UniqueStormCount: 3, MaxStormSpeed: 18}
	if diff := cmp.Diff(want, view.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSeasonService_NoData(t *testing.T) {
	view, err := newSeasonService(t).Run(context.Background(), "1980")
	require.NoError(t, err)
	assert.True(t, view.NoData)
	assert.Empty(t, view.Rows)
	assert.Equal(t, 0, view.Stats.TotalObservations)
}

func TestSeasonService_InvalidInput(t *testing.T) {
	svc := newSeasonService(t)

	for _, input := range []string{"", "twenty", "1974", "2026", "2020.5"} {
		_, err := svc.Run(context.Background(), input)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "input %q", input)
	}
}

func TestSeasonService_Unavailable(t *testing.T) {
	r := pipeline.NewRefresher(&stubSource{results: []fetchResult{{text: csvOneStorm}}}, 0, discardLogger(), newTestMetrics())
	svc := pipeline.NewSeasonService(r, discardLogger(), newTestMetrics())

	_, err := svc.Run(context.Background(), "2020")
	require.ErrorIs(t, err, pipeline.ErrDatasetUnavailable)

	// Validation still happens before any data access.
	_, err = svc.Run(context.Background(), "1900")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	require.NoError(t, r.Load(context.Background()))
	view, err := svc.Run(context.Background(), "2020")
	require.NoError(t, err)
	assert.Len(t, view.Rows, 1)
}

func TestSeasonService_RunYearIsIdempotent(t *testing.T) {
	svc := newSeasonService(t)

	first, err := svc.RunYear(context.Background(), 2021)
	require.NoError(t, err)
	second, err := svc.RunYear(context.Background(), 2021)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Rows, second.Rows); diff != "" {
		t.Errorf("repeated run differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Stats, second.Stats)
}
