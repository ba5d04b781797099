//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-track-service/internal/adapter/predictor"
	"github.com/couchcryptid/storm-track-service/internal/config"
	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/pipeline"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPredictionTopic = "test-predictions"

// publishedMessage holds a deserialized message read from the prediction topic.
type publishedMessage struct {
	View    viewmodel.PredictionView
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from prediction topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var view viewmodel.PredictionView
	require.NoError(t, json.Unmarshal(msg.Value, &view), "unmarshal prediction message")

	return publishedMessage{View: view, Key: string(msg.Key), Headers: headers}
}

// modelServer stands in for the prediction model service.
func modelServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		lat, lon := params["LAT"], params["LON"]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.PredictionResponse{
			Status:  domain.StatusSuccess,
			Message: "Predictions generated successfully",
			Predictions: map[string]domain.HorizonPoint{
				"6H":  {Lat: lat + 0.5, Lon: lon, DistanceFromCurrentKm: 55.6},
				"12H": {Lat: lat + 1, Lon: lon - 0.5, DistanceFromCurrentKm: 120},
				"24H": {Lat: lat + 2, Lon: lon - 2, DistanceFromCurrentKm: 300},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestPredictionPublishedToKafka runs a prediction through the real model
// client and Kafka publisher and reads the view back from the topic.
func TestPredictionPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testPredictionTopic)

	cfg := &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaPredictionTopic: testPredictionTopic,
	}
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	publisher := kafka.NewPublisher(cfg, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	client := predictor.NewClient(modelServer(t).URL, 5*time.Second, 10, metrics, logger)
	svc := pipeline.NewPredictionService(predictor.NewCachedPredictor(client, 16, metrics), publisher, logger, metrics)

	out, err := svc.Run(ctx, domain.QueryParams{"LAT": 20.5, "LON": 120, "WS": 45})
	require.NoError(t, err)
	require.True(t, out.View.Success, out.View.Error)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testPredictionTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	pm := readPublished(ctx, t, consumer)
	assert.Equal(t, fmt.Sprint(out.Token), pm.Key)
	assert.Equal(t, "success", pm.Headers[kafka.HeaderStatus])
	_, err = time.Parse(time.RFC3339, pm.Headers[kafka.HeaderRenderedAt])
	assert.NoError(t, err, "rendered_at should be valid RFC3339")

	require.Len(t, pm.View.Horizons, 3)
	assert.Equal(t, "24H", pm.View.Horizons[2].HorizonLabel)
	assert.Equal(t, "NW", pm.View.Horizons[2].Direction)
	require.NotNil(t, pm.View.Summary)
	assert.InDelta(t, 12.5, pm.View.Summary.AvgSpeedKmh, 1e-9)
}
