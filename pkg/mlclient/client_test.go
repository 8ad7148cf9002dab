package mlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	return New(Config{BaseURL: srv.URL}, &logger, nil)
}

func TestPredict_Success(t *testing.T) {
	var received model.MLFeatures
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		prob := 0.72
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.MLPrediction{
			Prediction:  1,
			Probability: &prob,
			RiskLevel:   "High",
			Message:     "ok",
		})
	})

	features := &model.MLFeatures{AgeMonths: 12, InfectionCount: 4}
	prediction, err := client.Predict(context.Background(), features)

	require.NoError(t, err)
	assert.Equal(t, 1, prediction.Prediction)
	assert.Equal(t, 0.72, *prediction.Probability)
	assert.Equal(t, 12, received.AgeMonths)
	assert.Equal(t, 4, received.InfectionCount)
}

func TestPredict_ServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Predict(context.Background(), &model.MLFeatures{})

	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPredict_ConnectionRefusedIsUnavailable(t *testing.T) {
	logger := zerolog.Nop()
	client := New(Config{BaseURL: "http://127.0.0.1:1"}, &logger, nil)

	_, err := client.Predict(context.Background(), &model.MLFeatures{})

	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, client.Health(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.ErrorIs(t, down.Health(context.Background()), ErrUnavailable)
}
