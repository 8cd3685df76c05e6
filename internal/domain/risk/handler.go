package risk

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/scan", h.ScanTranscript)
}

type scanRequest struct {
	Text string `json:"text"`
}

type scanResponse struct {
	RiskLabel    Label    `json:"risk_label"`
	MatchedTerms []string `json:"matched_terms"`
}

// ScanTranscript handles POST /scan: it runs the keyword scan over a
// free-text conversation transcript and reports the resulting label.
func (h *Handler) ScanTranscript(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	label, terms := Scan(req.Text)
	return c.JSON(http.StatusOK, scanResponse{RiskLabel: label, MatchedTerms: terms})
}
