package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"realestate-bi/models"
	"realestate-bi/services"
	"realestate-bi/utils"
)

// Server exposes filter and aggregate views over one canonical table.
// The table is loaded once by the caller and only read afterwards, so
// concurrent requests need no locking.
type Server struct {
	echo        *echo.Echo
	listings    []*models.Listing
	defaults    services.Filter
	previewRows int
	agg         *services.Aggregator
	logger      *utils.Logger
}

// NewServer builds the routes over listings. previewRows is the report
// preview length used when a request has no preview parameter.
func NewServer(listings []*models.Listing, previewRows int, logger *utils.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:        e,
		listings:    listings,
		defaults:    services.DefaultFilter(listings),
		previewRows: previewRows,
		agg:         services.NewAggregator(logger),
		logger:      logger,
	}

	e.GET("/healthz", s.health)
	g := e.Group("/api")
	g.GET("/options", s.options)
	g.GET("/report", s.report)
	g.GET("/listings", s.filteredListings)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[api] Listening on %s with %d listings", addr, len(s.listings))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("[api] Shutting down")
		return s.echo.Shutdown(context.Background())
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "listings": len(s.listings)})
}

func (s *Server) options(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Options(s.listings))
}

func (s *Server) report(c echo.Context) error {
	f, err := s.filterFromQuery(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	preview, err := intParam(c.QueryParams(), "preview", s.previewRows)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s.agg.Build(s.listings, f, preview))
}

func (s *Server) filteredListings(c echo.Context) error {
	f, err := s.filterFromQuery(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s.agg.Filter(s.listings, f))
}

// filterFromQuery overlays query parameters onto the default filter. A
// repeated "location" or "type" parameter replaces the selection; passing
// it with only empty values selects nothing.
func (s *Server) filterFromQuery(q url.Values) (services.Filter, error) {
	f := s.defaults
	if vals, ok := q["location"]; ok {
		f.Locations = nonEmpty(vals)
	}
	if vals, ok := q["type"]; ok {
		f.PropertyTypes = nonEmpty(vals)
	}

	var err error
	if f.BedroomMin, err = intParam(q, "bedroom_min", f.BedroomMin); err != nil {
		return f, err
	}
	if f.PriceMin, err = int64Param(q, "price_min", f.PriceMin); err != nil {
		return f, err
	}
	if f.PriceMax, err = int64Param(q, "price_max", f.PriceMax); err != nil {
		return f, err
	}
	return f, f.Validate()
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intParam(q url.Values, key string, fallback int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return n, nil
}

func int64Param(q url.Values, key string, fallback int64) (int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return n, nil
}
