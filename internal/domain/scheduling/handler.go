package scheduling

import (
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
	api.POST("/meetings", h.ScheduleMeeting)
	api.GET("/meetings/attempts", h.ListAttempts)
	api.GET("/meetings/attempts/:id", h.GetAttempt)
}

// ScheduleMeeting handles POST /meetings. Bad operator input is a 400;
// a calendar backend failure is a 502.
func (h *Handler) ScheduleMeeting(c echo.Context) error {
	var req MeetingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	conf, err := h.svc.Schedule(c.Request().Context(), req)
	if err != nil {
		switch KindOf(err) {
		case KindInvalidFormat:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case KindExternalService:
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, conf)
}

// ListAttempts handles GET /meetings/attempts?patient_id=.
func (h *Handler) ListAttempts(c echo.Context) error {
	pg := pagination.FromContext(c)
	attempts, total, err := h.svc.ListAttempts(c.Request().Context(), c.QueryParam("patient_id"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(attempts, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAttempt(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAttempt(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "attempt not found")
	}
	return c.JSON(http.StatusOK, a)
}
