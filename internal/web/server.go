// Package web serves the browser front-end: the page shell hosting the stock
// analyzer widget, rendered server-side from the widget's state.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dyike/StockLens/internal/display"
	"github.com/dyike/StockLens/internal/models"
	"github.com/dyike/StockLens/internal/widget"
)

//go:embed templates/*.tmpl static/*
var assets embed.FS

type Options struct {
	Analyzer widget.Analyzer
	// APIBaseURL is the analysis collaborator proxied under /api.
	APIBaseURL string
	Logger     logrus.FieldLogger
	Debug      bool
	// Location for rendered timestamps; time.Local when nil.
	Location *time.Location
}

type upstream struct {
	analyzer widget.Analyzer
	target   *url.URL
}

type Server struct {
	engine   *gin.Engine
	log      logrus.FieldLogger
	loc      *time.Location
	upstream atomic.Pointer[upstream]
}

type pageData struct {
	Title    string
	Subtitle string
	Widget   analyzerData
}

type analyzerData struct {
	widget.View
	LoadingLabel string
}

func NewServer(opts Options) (*Server, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("web: analyzer is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.ParseFS(assets, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		engine: gin.New(),
		log:    opts.Logger.WithField("component", "web"),
		loc:    opts.Location,
	}
	if err := s.SetUpstream(opts.Analyzer, opts.APIBaseURL); err != nil {
		return nil, err
	}

	s.engine.Use(gin.Recovery(), requestLogger(s.log))
	s.engine.SetHTMLTemplate(tmpl)
	s.setupRoutes(static)
	return s, nil
}

func (s *Server) setupRoutes(static fs.FS) {
	s.engine.GET("/", s.index)
	s.engine.GET("/healthz", s.health)
	s.engine.StaticFS("/static", http.FS(static))

	proxy := &httputil.ReverseProxy{
		Rewrite:      s.rewriteToUpstream,
		ErrorHandler: s.proxyError,
	}
	s.engine.Any("/api/*path", gin.WrapH(proxy))
}

// SetUpstream swaps the analyzer and proxy target used by later requests.
// Requests already in flight keep the previous ones.
func (s *Server) SetUpstream(analyzer widget.Analyzer, apiBaseURL string) error {
	var target *url.URL
	if apiBaseURL != "" {
		u, err := url.Parse(apiBaseURL)
		if err != nil {
			return fmt.Errorf("parse api base url: %w", err)
		}
		target = u
	}
	s.upstream.Store(&upstream{analyzer: analyzer, target: target})
	return nil
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
		s.log.Infof("Starting web front-end on %s", addr)
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
		s.log.Info("Shutting down web front-end")
		return srv.Shutdown(shutdownCtx)
	}
}

// index renders the shell. A "symbol" query parameter is a form submission:
// a fresh widget takes the typed text, submits, and its final state is shown.
func (s *Server) index(c *gin.Context) {
	w := widget.New(s.upstream.Load().analyzer)
	defer w.Detach()

	if raw, ok := c.GetQuery("symbol"); ok {
		w.SetSymbol(raw)
		if w.Submit(c.Request.Context()) {
			st := w.State()
			s.log.WithFields(logrus.Fields{
				"symbol": st.Symbol(),
				"phase":  st.Phase().String(),
			}).Debug("analysis submitted")
		}
	}

	c.HTML(http.StatusOK, "shell", pageData{
		Title:    display.Title,
		Subtitle: display.Subtitle,
		Widget: analyzerData{
			View:         widget.Render(w.State(), s.loc),
			LoadingLabel: widget.LabelAnalyzing,
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) rewriteToUpstream(r *httputil.ProxyRequest) {
	up := s.upstream.Load()
	if up.target == nil {
		return
	}
	r.SetURL(up.target)
	r.SetXForwarded()
}

func (s *Server) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithField("path", r.URL.Path).Warnf("api proxy error: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"error":"analysis service unavailable"}`))
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
