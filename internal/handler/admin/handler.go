package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bbabur/immune-risk-next-sub001/internal/handler"
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/service/admin"
)

type Handler struct {
	service *admin.Service
}

func NewHandler(service *admin.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/admin/db")
	{
		group.GET("/tables", h.ListTables)
		group.GET("/tables/sizes", h.TableSizes)
		group.GET("/tables/counts", h.RowCounts)
		group.GET("/tables/:table/rows", h.TableRows)
		group.GET("/indexes", h.IndexUsage)
		group.GET("/sessions", h.Sessions)
		group.POST("/query", h.RunQuery)
	}
}

func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.service.ListTables(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tables))
}

func (h *Handler) TableSizes(c *gin.Context) {
	sizes, err := h.service.TableSizes(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sizes))
}

func (h *Handler) RowCounts(c *gin.Context) {
	counts, err := h.service.RowCounts(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(counts))
}

func (h *Handler) TableRows(c *gin.Context) {
	result, err := h.service.TableRows(c.Request.Context(), c.Param("table"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	h.respond(c, result)
}

func (h *Handler) IndexUsage(c *gin.Context) {
	usage, err := h.service.IndexUsage(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(usage))
}

func (h *Handler) Sessions(c *gin.Context) {
	sessions, err := h.service.Sessions(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sessions))
}

func (h *Handler) RunQuery(c *gin.Context) {
	var req model.AdhocQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.RunQuery(c.Request.Context(), req.Query)
	if err != nil {
		handler.Error(c, err)
		return
	}
	h.respond(c, result)
}

// respond serializes a query result as JSON, CSV or XLSX depending on the
// format query parameter.
func (h *Handler) respond(c *gin.Context, result *model.QueryResult) {
	switch c.Query("format") {
	case "csv":
		data, err := h.service.ExportCSV(result)
		if err != nil {
			handler.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=export-%s.csv", time.Now().Format("20060102-150405")))
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.service.ExportXLSX(result)
		if err != nil {
			handler.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=export-%s.xlsx", time.Now().Format("20060102-150405")))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
	}
}
