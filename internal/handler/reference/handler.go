package reference

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bbabur/immune-risk-next-sub001/internal/handler"
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/service/reference"
)

type Handler struct {
	service *reference.Service
}

func NewHandler(service *reference.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/references/anti-hbs")
	{
		group.GET("", h.List)
		group.GET("/expected", h.Expected)
	}
}

// RegisterAdminRoutes mounts the table upsert on an admin-gated group.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.PUT("/references/anti-hbs", h.Upsert)
}

func (h *Handler) List(c *gin.Context) {
	refs, err := h.service.ListAntiHbs(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(refs))
}

func (h *Handler) Upsert(c *gin.Context) {
	var req model.UpsertAntiHbsReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ref, err := h.service.UpsertAntiHbs(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ref))
}

// Expected resolves the titer band for an age and booster status.
func (h *Handler) Expected(c *gin.Context) {
	ageMonths, err := strconv.Atoi(c.Query("age_months"))
	if err != nil || ageMonths < 0 {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("age_months must be a non-negative integer"))
		return
	}
	booster := c.Query("booster") == "true"

	ref, err := h.service.ExpectedRange(c.Request.Context(), ageMonths, booster)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if ref == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("no reference band covers this age"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ref))
}
