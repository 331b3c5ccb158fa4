// Package httpapi serves the calendar subscription feed and the agenda JSON
// endpoint over echo.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/ical"
)

const tracerName = "github.com/sandeepkv93/studyd/internal/httpapi"

// SourceLoader reads one user's planner records. An unknown user yields
// empty sources, not an error.
type SourceLoader interface {
	LoadSources(ctx context.Context, userID string) (agenda.Sources, error)
}

type Options struct {
	Sources        SourceLoader
	Location       *time.Location
	HorizonDays    int
	CalendarName   string
	DisableReqLogs bool
	Now            func() time.Time
	Logf           func(format string, args ...any)
}

type Server struct {
	opts   Options
	app    *echo.Echo
	tracer trace.Tracer
}

func NewServer(opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CalendarName == "" {
		opts.CalendarName = ical.DefaultCalendarName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	s := &Server{opts: opts, app: echo.New(), tracer: otel.Tracer(tracerName)}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())
	s.app.HTTPErrorHandler = s.handleError

	s.app.GET("/healthz", healthz)
	s.app.GET("/calendar-feed", s.calendarFeed)
	s.app.GET("/feeds/:user/calendar.ics", s.userFeed)

	v1 := s.app.Group("/v1")
	v1.GET("/users/:user/agenda", s.agenda)
}

// Start blocks serving on addr until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.app.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// handleError writes {"error": message}. Anything that is not an
// *echo.HTTPError is logged and reported as a bare 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		code = herr.Code
		if m, ok := herr.Message.(string); ok {
			message = m
		}
	} else {
		// Details stay in the log; clients get a fixed body.
		s.opts.Logf("httpapi: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		message = InternalErrorMsg
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": message})
	}
	if err != nil {
		s.opts.Logf("httpapi: write error response: %v", err)
	}
}

func healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
