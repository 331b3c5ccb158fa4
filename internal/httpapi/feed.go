package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/ical"
)

const (
	MIMECalendar     = "text/calendar; charset=utf-8"
	FeedFileName     = "my-schedule.ics"
	MissingUserIDMsg = "Missing user ID"
	InternalErrorMsg = "internal error"
)

// calendarFeed serves GET /calendar-feed?u=USER.
func (s *Server) calendarFeed(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("u"))
	if userID == "" {
		return c.String(http.StatusBadRequest, MissingUserIDMsg)
	}
	return s.writeFeed(c, userID)
}

// userFeed serves GET /feeds/:user/calendar.ics.
func (s *Server) userFeed(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		return c.String(http.StatusBadRequest, MissingUserIDMsg)
	}
	return s.writeFeed(c, userID)
}

func (s *Server) writeFeed(c echo.Context, userID string) error {
	ctx, span := s.tracer.Start(c.Request().Context(), "httpapi.Feed")
	defer span.End()

	src, err := s.opts.Sources.LoadSources(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load sources")
		return fmt.Errorf("load sources for %s: %w", userID, err)
	}
	s.logUndated(userID, src)

	var buf bytes.Buffer
	stats, err := ical.Feed(&buf, src, s.opts.Now(), ical.Options{
		Location:     s.opts.Location,
		HorizonDays:  s.opts.HorizonDays,
		CalendarName: s.opts.CalendarName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render feed")
		return fmt.Errorf("render feed for %s: %w", userID, err)
	}
	span.SetAttributes(
		attribute.Int("feed.events", stats.Events),
		attribute.Int("feed.skipped", len(stats.Skipped)),
	)
	if len(stats.Skipped) > 0 {
		s.opts.Logf("httpapi: feed %s skipped %d records: %s", userID, len(stats.Skipped), strings.Join(stats.Skipped, ", "))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", FeedFileName))
	return c.Blob(http.StatusOK, MIMECalendar, buf.Bytes())
}

func (s *Server) logUndated(userID string, src agenda.Sources) {
	if ids := agenda.Undated(src); len(ids) > 0 {
		s.opts.Logf("httpapi: user %s has %d records with unparseable due dates: %s", userID, len(ids), strings.Join(ids, ", "))
	}
}
