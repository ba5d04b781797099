package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
)

// SeasonService runs the tabular pipeline: validate the season, filter the
// current snapshot, aggregate per storm, summarize, and build the table view.
type SeasonService struct {
	data    SnapshotProvider
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSeasonService creates a SeasonService over the given snapshot provider.
func NewSeasonService(data SnapshotProvider, logger *slog.Logger, metrics *observability.Metrics) *SeasonService {
	return &SeasonService{data: data, logger: logger, metrics: metrics}
}

// Run parses and validates the season text, then builds its table view.
// A *domain.ValidationError is returned before any data access; an empty
// season is reported through the view's NoData state, not as an error.
func (s *SeasonService) Run(ctx context.Context, seasonInput string) (viewmodel.TableView, error) {
	year, err := domain.ParseSeason(seasonInput)
	if err != nil {
		s.metrics.SeasonRequests.WithLabelValues("invalid").Inc()
		return viewmodel.TableView{}, err
	}
	return s.RunYear(ctx, year)
}

// RunYear builds the table view for an integer season.
func (s *SeasonService) RunYear(_ context.Context, year int) (viewmodel.TableView, error) {
	if err := domain.ValidateSeason(year); err != nil {
		s.metrics.SeasonRequests.WithLabelValues("invalid").Inc()
		return viewmodel.TableView{}, err
	}

	snap, ok := s.data.Snapshot()
	if !ok {
		s.metrics.SeasonRequests.WithLabelValues("unavailable").Inc()
		return viewmodel.TableView{}, ErrDatasetUnavailable
	}

	records := domain.FilterBySeason(snap.Records, year)
	summaries, err := domain.AggregateStorms(records)
	stats := domain.Summarize(records)
	view := viewmodel.BuildTable(year, summaries, stats, err)

	if errors.Is(err, domain.ErrNoData) {
		s.metrics.SeasonRequests.WithLabelValues("no_data").Inc()
		s.logger.Debug("season has no storms", "season", year, "observations", stats.TotalObservations)
	} else {
		s.metrics.SeasonRequests.WithLabelValues("ok").Inc()
	}
	return view, nil
}

// StaticData serves a fixed record set, for one-shot runs without a Refresher.
func StaticData(records []domain.StormRecord) SnapshotProvider {
	return staticData{snap: &Snapshot{Records: records, LoadedAt: domain.Now()}}
}

type staticData struct {
	snap *Snapshot
}

func (d staticData) Snapshot() (*Snapshot, bool) { return d.snap, true }
