package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/pipeline"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
)

// maxPredictBody bounds the prediction request body.
const maxPredictBody = 64 << 10

// SeasonRunner builds the season table view for user-supplied year text.
type SeasonRunner interface {
	Run(ctx context.Context, seasonInput string) (viewmodel.TableView, error)
}

// PredictionRunner runs prediction requests and remembers the latest view.
type PredictionRunner interface {
	Run(ctx context.Context, params domain.QueryParams) (pipeline.Rendered, error)
	Latest() (pipeline.Rendered, bool)
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	view, err := s.seasons.Run(r.Context(), r.PathValue("year"))
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		case errors.Is(err, pipeline.ErrDatasetUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.logger.Error("season request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	etag, err := tableETag(view)
	if err != nil {
		s.logger.Error("hash season view", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var params domain.QueryParams
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err := dec.Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object of numeric parameters")
		return
	}

	out, err := s.predictions.Run(r.Context(), params)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("prediction request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("X-Request-Token", strconv.FormatUint(out.Token, 10))
	if out.Stale {
		w.Header().Set("X-Prediction-Stale", "true")
	}
	status := http.StatusOK
	if !out.View.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, out.View)
}

func (s *Server) handleLatestPrediction(w http.ResponseWriter, _ *http.Request) {
	out, ok := s.predictions.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no prediction rendered yet")
		return
	}
	w.Header().Set("X-Request-Token", strconv.FormatUint(out.Token, 10))
	writeJSON(w, http.StatusOK, out.View)
}

func (s *Server) handleWindGauge(w http.ResponseWriter, r *http.Request) {
	ws, err := strconv.ParseFloat(r.URL.Query().Get("ws"), 64)
	if err != nil || ws < 0 {
		writeError(w, http.StatusBadRequest, "ws must be a non-negative number")
		return
	}
	writeJSON(w, http.StatusOK, domain.ClassifyWindInput(ws))
}

// tableETag hashes the view's content, ignoring its generation time, so
// repeated requests against the same snapshot share a tag.
func tableETag(view viewmodel.TableView) (string, error) {
	view.GeneratedAt = time.Time{}
	data, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return "\"" + strconv.FormatUint(xxhash.Sum64(data), 10) + "\"", nil
}
