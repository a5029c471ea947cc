package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TobiSchelling/pulseboard/internal/compose"
	"github.com/TobiSchelling/pulseboard/internal/model"
	"github.com/TobiSchelling/pulseboard/internal/pipeline"
	"github.com/TobiSchelling/pulseboard/internal/trending"
	"github.com/TobiSchelling/pulseboard/internal/validator"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	msgTopicRequired  = "Topic is required"
	msgAnalysisFailed = "Analysis failed"
	msgTrendingFailed = "Trending unavailable"

	maxBodyBytes = 1 << 16
)

// Analyzer produces the analysis for a topic.
type Analyzer interface {
	Analyze(ctx context.Context, topic string) (*model.AnalysisResult, error)
}

// TrendingSource lists what is hot right now.
type TrendingSource interface {
	Topics(ctx context.Context) ([]trending.Topic, error)
}

type analyzeRequest struct {
	Topic string `validate:"required"`
}

// Server is the HTTP server for the analysis API and report pages.
type Server struct {
	analyzer Analyzer
	trending TrendingSource
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server.
func New(analyzer Analyzer, trending TrendingSource) (*Server, error) {
	base, err := template.New("base.html").ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so "title" and "content" can be redefined.
	pageNames := []string{"index.html", "brief.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{analyzer: analyzer, trending: trending, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/brief", s.handleBrief)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/trending", s.handleTrending)
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var topics []trending.Topic
	if s.trending != nil {
		var err error
		if topics, err = s.trending.Topics(r.Context()); err != nil {
			log.Warn("Loading trending topics failed", "err", err)
		}
	}
	s.render(w, "index.html", map[string]any{"Trending": topics})
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), topic)
	if err != nil {
		log.Error("Brief failed", "topic", topic, "err", err)
		http.Error(w, msgAnalysisFailed, http.StatusInternalServerError)
		return
	}

	s.render(w, "brief.html", map[string]any{
		"Topic":  res.Topic,
		"Report": compose.HTML(compose.Markdown(res)),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	switch r.Method {
	case http.MethodGet:
		req.Topic = r.URL.Query().Get("topic")
	case http.MethodPost:
		var body struct {
			Topic any `json:"topic"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err == nil {
			req.Topic, _ = body.Topic.(string)
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	topic := req.Topic
	req.Topic = strings.TrimSpace(req.Topic)
	if err := validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgTopicRequired)
		return
	}

	start := time.Now()
	res, err := s.analyzer.Analyze(r.Context(), topic)
	switch {
	case errors.Is(err, pipeline.ErrInvalidTopic):
		writeError(w, http.StatusBadRequest, msgTopicRequired)
		return
	case err != nil:
		log.Error("Analyze error", "topic", req.Topic, "err", err)
		writeError(w, http.StatusInternalServerError, msgAnalysisFailed)
		return
	}

	log.Debug("Analyze served", "topic", req.Topic, "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if s.trending == nil {
		writeJSON(w, http.StatusOK, []trending.Topic{})
		return
	}
	topics, err := s.trending.Topics(r.Context())
	if err != nil {
		log.Error("Trending error", "err", err)
		writeError(w, http.StatusInternalServerError, msgTrendingFailed)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error("Template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Error("Rendering template failed", "name", name, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Encoding response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve starts the HTTP server on the given port and shuts it down when ctx
// is cancelled.
func Serve(ctx context.Context, s *Server, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "url", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
