package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProStatistics/internal/metrics"
	"ProStatistics/internal/model"
	"ProStatistics/internal/recorder"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dropdown element IDs, shared by the page form and the query string.
const (
	ParamYAxis        = "y_axis_column"
	ParamColorAxisBar = "color_axis_fig1"
	ParamSizeAxis     = "size_axis_fig2"
	ParamColorScatter = "color_axis_fig2"
)

// HistorySource lists recorded collections.
type HistorySource interface {
	ListSnapshots(limit int) ([]recorder.SnapshotInfo, error)
}

// Options configures a Server.
type Options struct {
	Title string
	Log   *zap.SugaredLogger
	// Debug logs every request and, when TemplateDir is set, re-reads the
	// page template from disk on each request.
	Debug       bool
	TemplateDir string
	History     HistorySource
}

// Server is the dashboard's HTTP surface. Chart handlers are pure functions
// of the stored table and the request's column selection.
type Server struct {
	store *Store
	opts  Options
	log   *zap.SugaredLogger
	page  *template.Template
}

// NewServer creates a Server over store.
func NewServer(store *Store, opts Options) (*Server, error) {
	if opts.Title == "" {
		opts.Title = "Pro-Statistics"
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	s := &Server{store: store, opts: opts, log: opts.Log}
	page, err := parsePage(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	s.page = page
	return s, nil
}

func parsePage(fsys fs.FS, dir string) (*template.Template, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	t, err := template.ParseFS(sub, "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return t, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /charts/bar.svg", s.handleBarSVG)
	mux.HandleFunc("GET /charts/scatter.svg", s.handleScatterSVG)
	mux.HandleFunc("GET /api/figures/bar", s.handleBarJSON)
	mux.HandleFunc("GET /api/figures/scatter", s.handleScatterJSON)
	mux.HandleFunc("GET /api/table", s.handleTable)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.opts.History != nil {
		mux.HandleFunc("GET /api/history", s.handleHistory)
	}
	if s.opts.Debug {
		return s.logRequests(mux)
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type dropdown struct {
	ID       string
	Label    string
	Selected model.Column
}

type pageData struct {
	Title     string
	FirstYear string
	LastYear  string
	Rows      int
	FetchedAt string
	Bar       BarSelection
	Scatter   ScatterSelection
	Options   []model.Column
	Dropdowns []dropdown
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	y, err := columnParam(q, ParamYAxis, DefaultBarSelection.Y)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	barColor, err := columnParam(q, ParamColorAxisBar, DefaultBarSelection.Color)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, err := columnParam(q, ParamSizeAxis, DefaultScatterSelection.Size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scatterColor, err := columnParam(q, ParamColorScatter, DefaultScatterSelection.Color)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page := s.page
	if s.opts.Debug && s.opts.TemplateDir != "" {
		if page, err = parsePage(os.DirFS(s.opts.TemplateDir), "."); err != nil {
			s.log.Errorw("reload page template", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	table := s.store.Table()
	data := pageData{
		Title:     s.opts.Title,
		Rows:      table.Len(),
		FetchedAt: table.FetchedAt.Format("2006-01-02 15:04 MST"),
		Bar:       BarSelection{Y: y, Color: barColor},
		Scatter:   ScatterSelection{Y: y, Size: size, Color: scatterColor},
		Options:   model.Columns,
		Dropdowns: []dropdown{
			{ID: ParamYAxis, Label: "Y-Axis for Charts", Selected: y},
			{ID: ParamColorAxisBar, Label: "Color Axis for Chart 1", Selected: barColor},
			{ID: ParamSizeAxis, Label: "Size Axis for Chart 2", Selected: size},
			{ID: ParamColorScatter, Label: "Color Axis for Chart 2", Selected: scatterColor},
		},
	}
	if table.Len() > 0 {
		data.FirstYear = table.Rows[0].Year
		data.LastYear = table.Rows[table.Len()-1].Year
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		s.log.Errorw("render page", "error", err)
		http.Error(w, "render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBarSVG(w http.ResponseWriter, r *http.Request) {
	sel, err := parseBarSelection(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeSVG(w, BarFigure(s.store.Table(), sel))
}

func (s *Server) handleScatterSVG(w http.ResponseWriter, r *http.Request) {
	sel, err := parseScatterSelection(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeSVG(w, ScatterFigure(s.store.Table(), sel))
}

func (s *Server) handleBarJSON(w http.ResponseWriter, r *http.Request) {
	sel, err := parseBarSelection(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.ChartRenders.WithLabelValues(string(KindBar), "json").Inc()
	s.writeJSON(w, BarFigure(s.store.Table(), sel))
}

func (s *Server) handleScatterJSON(w http.ResponseWriter, r *http.Request) {
	sel, err := parseScatterSelection(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.ChartRenders.WithLabelValues(string(KindScatter), "json").Inc()
	s.writeJSON(w, ScatterFigure(s.store.Table(), sel))
}

func (s *Server) handleTable(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.store.Table())
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	snaps, err := s.opts.History.ListSnapshots(50)
	if err != nil {
		s.log.Errorw("list snapshots", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []recorder.SnapshotInfo{}
	}
	s.writeJSON(w, snaps)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{"status": "ok", "rows": s.store.Table().Len()})
}

func (s *Server) writeSVG(w http.ResponseWriter, fig Figure) {
	var buf bytes.Buffer
	if err := Render(fig, &buf); err != nil {
		s.log.Errorw("render chart", "chart", fig.Kind, "error", err)
		http.Error(w, "render chart", http.StatusInternalServerError)
		return
	}
	metrics.ChartRenders.WithLabelValues(string(fig.Kind), "svg").Inc()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("encode response", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugw("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "took", time.Since(start))
	})
}

func parseBarSelection(q url.Values) (BarSelection, error) {
	y, err := columnParam(q, "y", DefaultBarSelection.Y)
	if err != nil {
		return BarSelection{}, err
	}
	color, err := columnParam(q, "color", DefaultBarSelection.Color)
	if err != nil {
		return BarSelection{}, err
	}
	return BarSelection{Y: y, Color: color}, nil
}

func parseScatterSelection(q url.Values) (ScatterSelection, error) {
	y, err := columnParam(q, "y", DefaultScatterSelection.Y)
	if err != nil {
		return ScatterSelection{}, err
	}
	size, err := columnParam(q, "size", DefaultScatterSelection.Size)
	if err != nil {
		return ScatterSelection{}, err
	}
	color, err := columnParam(q, "color", DefaultScatterSelection.Color)
	if err != nil {
		return ScatterSelection{}, err
	}
	return ScatterSelection{Y: y, Size: size, Color: color}, nil
}

// columnParam reads a column selection; an absent parameter takes def.
func columnParam(q url.Values, key string, def model.Column) (model.Column, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	c, err := model.ParseColumn(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return c, nil
}
