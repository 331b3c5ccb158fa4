package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/dates"
)

const (
	DefaultAgendaDays = 7
	MaxAgendaDays     = 62
)

type agendaDay struct {
	Date   string         `json:"date"`
	Events []agenda.Event `json:"events"`
}

type agendaResponse struct {
	User string      `json:"user"`
	From string      `json:"from"`
	Days []agendaDay `json:"days"`
}

// agenda serves GET /v1/users/:user/agenda?from=YYYY-MM-DD&days=N.
func (s *Server) agenda(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, MissingUserIDMsg)
	}

	from := dates.FromTime(s.opts.Now().In(s.opts.Location))
	if raw := c.QueryParam("from"); raw != "" {
		d, ok := dates.Parse(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid from date %q", raw))
		}
		from = d
	}

	days := DefaultAgendaDays
	if err := echo.QueryParamsBinder(c).Int("days", &days).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be an integer")
	}
	if days < 1 || days > MaxAgendaDays {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", MaxAgendaDays))
	}

	src, err := s.opts.Sources.LoadSources(c.Request().Context(), userID)
	if err != nil {
		return fmt.Errorf("load sources for %s: %w", userID, err)
	}
	s.logUndated(userID, src)

	resp := agendaResponse{User: userID, From: from.String(), Days: make([]agendaDay, 0, days)}
	for _, day := range agenda.EventsForRange(from, days, src) {
		resp.Days = append(resp.Days, agendaDay{Date: day.Date.String(), Events: day.Events})
	}
	return c.JSON(http.StatusOK, resp)
}
