package ml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/pkg/mlclient"
)

type fakeClient struct {
	healthErr  error
	prediction *model.MLPrediction
	predictErr error
}

func (f *fakeClient) Health(ctx context.Context) error { return f.healthErr }
func (f *fakeClient) Predict(ctx context.Context, features *model.MLFeatures) (*model.MLPrediction, error) {
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	return f.prediction, nil
}

func setupRouter(client mlclient.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(client).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHealth_Passthrough(t *testing.T) {
	r := setupRouter(&fakeClient{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ml/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	r = setupRouter(&fakeClient{healthErr: mlclient.ErrUnavailable})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ml/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPredict(t *testing.T) {
	prob := 0.9
	r := setupRouter(&fakeClient{prediction: &model.MLPrediction{
		Prediction:  1,
		Probability: &prob,
		RiskLevel:   "High",
	}})

	body := strings.NewReader(`{"age_months": 12, "gender": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ml/predict", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"risk_level":"High"`)
}

func TestPredict_Unavailable(t *testing.T) {
	r := setupRouter(&fakeClient{predictErr: mlclient.ErrUnavailable})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ml/predict", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
