// Package devapi is a development stand-in for the analysis service: it loads
// recent daily bars, summarises them and returns bullish and bearish views in
// the same JSON shape the front-end consumes.
package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dyike/StockLens/internal/dataflows"
	"github.com/dyike/StockLens/internal/models"
)

// FetchErrorMessage is returned with 400 when no usable history exists.
const FetchErrorMessage = "Unable to fetch stock data. Please check the symbol and try again."

type Options struct {
	Source  dataflows.PriceSource
	Analyst Analyst
	Logger  logrus.FieldLogger
	Debug   bool
}

type Server struct {
	engine  *gin.Engine
	source  dataflows.PriceSource
	analyst Analyst
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewServer(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("devapi: price source is required")
	}
	if opts.Analyst == nil {
		opts.Analyst = RuleAnalyst{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:  gin.New(),
		source:  opts.Source,
		analyst: opts.Analyst,
		log:     opts.Logger.WithField("component", "devapi"),
		now:     time.Now,
	}

	s.engine.Use(gin.CustomRecovery(s.recover), cors())
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/analyze/:symbol", s.analyze)
	api.GET("/health", s.health)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Starting development analysis API on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) analyze(c *gin.Context) {
	symbol := dataflows.NormalizeSymbol(c.Param("symbol"))
	log := s.log.WithField("symbol", symbol)

	bars, err := s.source.History(c.Request.Context(), symbol, HistoryDays)
	if err != nil {
		log.Warnf("price history unavailable: %v", err)
	}
	summary, sumErr := Summarize(symbol, bars)
	if err != nil || sumErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorBody{Error: FetchErrorMessage, Symbol: symbol})
		return
	}

	analysis, err := s.analyst.Analyze(c.Request.Context(), summary)
	if err != nil {
		log.Warnf("analyst failed: %v", err)
		analysis = unavailableAnalysis()
	}

	price, _ := summary.Latest.Float64()
	change, _ := summary.Change.Float64()
	pct, _ := summary.ChangePct.Float64()

	log.WithField("price", price).Debug("analysis complete")
	c.JSON(http.StatusOK, models.AnalysisResult{
		Symbol:         symbol,
		CurrentPrice:   price,
		PriceChange:    change,
		PriceChangePct: pct,
		Analysis:       analysis,
		LastUpdated:    s.now().Format(time.RFC3339),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.log.Errorf("panic serving %s: %v", c.Request.URL.Path, recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorBody{
		Error:  fmt.Sprintf("An error occurred: %v", recovered),
		Symbol: strings.ToUpper(c.Param("symbol")),
	})
}

// cors lets a front-end on another origin call the API during development.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
