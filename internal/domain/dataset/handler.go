package dataset

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/riskdash/riskdash/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/datasets", h.Upload)
	api.GET("/datasets", h.ListDatasets)
	api.GET("/datasets/:id", h.GetDataset)
	api.DELETE("/datasets/:id", h.DeleteDataset)
	api.GET("/datasets/:id/records", h.ListRecords)
	api.GET("/datasets/:id/records/export", h.ExportRecords)
}

// Upload handles POST /datasets: a multipart CSV upload under the "file"
// field. Malformed CSV fails here, at the ingestion boundary.
func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file upload")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	d, err := h.svc.Ingest(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d.Summary())
}

func (h *Handler) ListDatasets(c echo.Context) error {
	summaries, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) GetDataset(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}
	return c.JSON(http.StatusOK, d.Summary())
}

func (h *Handler) DeleteDataset(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRecords handles GET /datasets/:id/records?risk=all|high|low.
func (h *Handler) ListRecords(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	selector, err := ParseSelector(c.QueryParam("risk"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pg := pagination.FromContext(c)
	records, total, err := h.svc.Records(c.Request().Context(), id, selector, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

// ExportRecords handles GET /datasets/:id/records/export: the filtered
// table as a CSV download.
func (h *Handler) ExportRecords(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	selector, err := ParseSelector(c.QueryParam("risk"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.svc.Get(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", id.String()+".csv"))
	c.Response().WriteHeader(http.StatusOK)
	return h.svc.Export(c.Request().Context(), id, selector, c.Response())
}
