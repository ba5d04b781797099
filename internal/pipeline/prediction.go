package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
)

// publishTimeout bounds a Kafka write once the request that produced the
// view has returned.
const publishTimeout = 10 * time.Second

// Predictor fetches a raw prediction from the model service.
type Predictor interface {
	Predict(ctx context.Context, params domain.QueryParams) (domain.PredictionResponse, error)
}

// Publisher forwards committed prediction views downstream.
type Publisher interface {
	Publish(ctx context.Context, token uint64, view viewmodel.PredictionView) error
}

// Rendered is a prediction view tagged with the request token that produced it.
type Rendered struct {
	Token uint64
	View  viewmodel.PredictionView
	// Stale is set when a newer request had already committed its view.
	Stale bool
}

// RenderContext issues request tokens and holds the most recently committed
// prediction view. A view may only be committed by the latest issued token,
// so a slow response never overwrites or supersedes a newer request.
type RenderContext struct {
	mu      sync.Mutex
	issued  uint64
	current Rendered
	has     bool
}

// Issue hands out the next request token.
func (rc *RenderContext) Issue() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.issued++
	return rc.issued
}

// Commit stores view if no newer token has been issued since token and
// reports whether it did.
func (rc *RenderContext) Commit(token uint64, view viewmodel.PredictionView) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if token < rc.issued {
		return false
	}
	rc.current = Rendered{Token: token, View: view}
	rc.has = true
	return true
}

// Current returns the committed view, if any.
func (rc *RenderContext) Current() (Rendered, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.current, rc.has
}

// PredictionService runs the prediction pipeline: validate the query, call
// the model service, interpret the result, build the view, and commit it
// to the shared render context.
type PredictionService struct {
	predictor Predictor
	publisher Publisher
	render    *RenderContext
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewPredictionService creates a PredictionService. Pass a nil publisher to
// disable publishing.
func NewPredictionService(predictor Predictor, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *PredictionService {
	return &PredictionService{
		predictor: predictor,
		publisher: publisher,
		render:    &RenderContext{},
		logger:    logger,
		metrics:   metrics,
	}
}

// Latest returns the most recently committed prediction view.
func (s *PredictionService) Latest() (Rendered, bool) {
	return s.render.Current()
}

// Run executes one prediction request. Only invalid input is returned as an
// error: model and transport failures come back as a failure view with
// Success unset. The view is committed and published only if no newer
// request has been issued while it was in flight.
func (s *PredictionService) Run(ctx context.Context, params domain.QueryParams) (Rendered, error) {
	q, err := domain.ValidateQuery(params)
	if err != nil {
		s.metrics.PredictionRequests.WithLabelValues("invalid").Inc()
		return Rendered{}, err
	}

	token := s.render.Issue()
	view := s.build(ctx, q)

	if view.Success {
		s.metrics.PredictionRequests.WithLabelValues("success").Inc()
	} else {
		s.metrics.PredictionRequests.WithLabelValues("failure").Inc()
		s.logger.Warn("prediction failed", "token", token, "error", view.Error)
	}

	out := Rendered{Token: token, View: view}
	if !s.render.Commit(token, view) {
		out.Stale = true
		s.metrics.StaleDiscarded.Inc()
		s.logger.Info("discarding stale prediction", "token", token)
		return out, nil
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, token, view); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Error("publish prediction failed", "token", token, "error", err)
		}
	}
	return out, nil
}

func (s *PredictionService) build(ctx context.Context, q domain.Query) viewmodel.PredictionView {
	resp, err := s.predictor.Predict(ctx, q.Params)
	if err != nil {
		return viewmodel.FailedPrediction(&domain.PredictionFailure{Err: err})
	}

	in, err := domain.Interpret(domain.PredictionResult{
		PredictionResponse: resp,
		CurrentLat:         q.Lat,
		CurrentLon:         q.Lon,
		WindSpeed:          q.WindSpeed,
	})
	return viewmodel.BuildPrediction(in, err)
}
