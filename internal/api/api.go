// Package api serves CV analysis over HTTP alongside the bot.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/yesminehe/CVHelperBot/internal/extraction"
	"github.com/yesminehe/CVHelperBot/internal/grammar"
	"github.com/yesminehe/CVHelperBot/internal/scoring"
	"github.com/yesminehe/CVHelperBot/internal/skills"
	"github.com/yesminehe/CVHelperBot/internal/worker"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
	"github.com/yesminehe/CVHelperBot/pkg/logger"
)

const uploadField = "cv"

type Services struct {
	Extractor extraction.Extractor
	// Grammar is optional; without it the score carries no grammar penalty.
	Grammar  grammar.Checker
	Skills   skills.Extractor
	Pool     *worker.Pool
	MaxBytes int64
}

type AnalyzeResponse struct {
	scoring.Analysis
	Skills         []string `json:"skills"`
	GrammarIssues  int      `json:"grammar_issues"`
	GrammarChecked bool     `json:"grammar_checked"`
}

type Server struct {
	port       int
	svc        Services
	httpServer *http.Server
}

func NewServer(port int, svc Services) *Server {
	if svc.MaxBytes <= 0 {
		svc.MaxBytes = extraction.DefaultMaxBytes
	}
	s := &Server{port: port, svc: svc}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", Chain(s.handleAnalyze, RequestID, Logger, Recover, MethodChecker(http.MethodPost)))
	mux.HandleFunc("/healthz", Chain(s.handleHealth, RequestID, Recover, MethodChecker(http.MethodGet)))
	return mux
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting API server", "component", "api", "port", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := logger.GetRequestID(ctx)
	log := logger.FromContext(ctx).With("component", "api", "operation", "analyze")

	r.Body = http.MaxBytesReader(w, r.Body, s.svc.MaxBytes+1<<20)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		RespondWithError(w, apperrors.ErrBadRequest(`multipart field "cv" with a PDF file is required`).WithRequestID(requestID))
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		RespondWithError(w, apperrors.ErrBadRequest("only PDF files are accepted").WithRequestID(requestID))
		return
	}

	text, err := worker.Do(ctx, s.svc.Pool, func(ctx context.Context) (string, error) {
		return s.svc.Extractor.Extract(ctx, file)
	})
	if errors.Is(err, extraction.ErrTooLarge) {
		RespondWithError(w, apperrors.ErrBadRequest(err.Error()).WithRequestID(requestID))
		return
	}
	if err != nil {
		log.Error("extraction failed", "error", err, "filename", header.Filename)
		RespondWithError(w, apperrors.ErrUnprocessable("the file could not be read as a PDF").WithRequestID(requestID))
		return
	}
	if extraction.IsEmpty(text) {
		RespondWithError(w, apperrors.ErrUnprocessable(apperrors.ErrEmptyExtraction().Message).WithRequestID(requestID))
		return
	}

	resp := AnalyzeResponse{}
	if s.svc.Grammar != nil {
		issues, err := worker.Do(ctx, s.svc.Pool, func(ctx context.Context) ([]grammar.Issue, error) {
			return s.svc.Grammar.Check(ctx, text)
		})
		if err != nil {
			log.Warn("grammar check unavailable, scoring without it", "error", err)
		} else {
			resp.GrammarIssues = len(issues)
			resp.GrammarChecked = true
		}
	}
	resp.Analysis = scoring.Analyze(text, resp.GrammarIssues)

	if s.svc.Skills != nil {
		set, err := s.svc.Skills.Extract(ctx, text)
		if err != nil {
			log.Error("skill extraction failed", "error", err)
			RespondWithError(w, apperrors.ErrInternalServer(apperrors.GenericMessage).WithRequestID(requestID))
			return
		}
		resp.Skills = set.Sorted()
	}

	log.Info("cv analyzed", "score", resp.Report.Score, "words", resp.WordCount)
	RespondWithJSON(w, http.StatusOK, resp)
}
