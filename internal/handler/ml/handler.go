package ml

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bbabur/immune-risk-next-sub001/internal/handler"
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/pkg/mlclient"
)

// Handler proxies the external predictor. Failures surface as 503 so the UI
// can tell "predictor down" apart from application errors.
type Handler struct {
	client mlclient.Client
}

func NewHandler(client mlclient.Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/ml")
	{
		group.GET("/health", h.Health)
		group.POST("/predict", h.Predict)
	}
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.client.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, handler.NewErrorResponse("ml service unavailable"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"status": "UP"}))
}

func (h *Handler) Predict(c *gin.Context) {
	var features model.MLFeatures
	if err := c.ShouldBindJSON(&features); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	prediction, err := h.client.Predict(c.Request.Context(), &features)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, handler.NewErrorResponse("ml service unavailable"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prediction))
}
