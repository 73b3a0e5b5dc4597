// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the evaluator and the run store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/citation-eval/internal/dataset"
	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/internal/logging"
	"github.com/pdiddy/citation-eval/internal/report"
	"github.com/pdiddy/citation-eval/internal/store"
	"github.com/pdiddy/citation-eval/pkg/types"
)

// RunStore is the subset of the run store the server uses.
type RunStore interface {
	SaveRun(ctx context.Context, run *types.Run) error
	GetRun(ctx context.Context, id string) (types.Run, error)
	ListRuns(ctx context.Context, limit int) ([]types.Run, error)
	DeleteRun(ctx context.Context, id string) error
}

// Server serves the HTTP API.
type Server struct {
	runs    RunStore
	cfg     types.EvaluationConfig
	maxBody int64
	log     *zap.SugaredLogger
	engine  *gin.Engine
}

// New builds a server evaluating with eval. runs may be nil, in which case
// the run endpoints answer 503. Posted datasets larger than
// serve.MaxBodyBytes are rejected with 413; a non-positive limit uses the
// default.
func New(runs RunStore, eval types.EvaluationConfig, serve types.ServeConfig) *Server {
	maxBody := serve.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = types.DefaultConfig().Serve.MaxBodyBytes
	}
	s := &Server{
		runs:    runs,
		cfg:     eval,
		maxBody: maxBody,
		log:     logging.New("server"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	api.POST("/evaluate", s.evaluate)
	api.GET("/runs", s.listRuns)
	api.GET("/runs/:id", s.getRun)
	api.DELETE("/runs/:id", s.deleteRun)

	s.engine = r
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Infow("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// evaluate scores the JSON dataset in the request body and, with save=true,
// persists the run.
func (s *Server) evaluate(c *gin.Context) {
	opts, err := s.options(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	save, err := boolQuery(c, "save", false)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if save && s.runs == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("run store not configured"))
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)
	ds, err := dataset.Decode(body, dataset.FormatJSON)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, http.StatusRequestEntityTooLarge, fmt.Errorf("dataset exceeds %d bytes", tooLarge.Limit))
			return
		}
		abort(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	res, err := evaluation.Evaluate(ctx, ds, opts)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	summary, err := report.Summarize(res)
	if errors.Is(err, evaluation.ErrEmptyDataset) {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	summary.Dataset = c.DefaultQuery("name", "api")
	if save {
		run := res.Run(summary.Dataset)
		if err := s.runs.SaveRun(ctx, &run); err != nil {
			abort(c, http.StatusInternalServerError, err)
			return
		}
		summary.RunID = run.ID
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) options(c *gin.Context) (evaluation.Options, error) {
	cfg := s.cfg
	cfg.SplitAttr = c.DefaultQuery("split_attr", cfg.SplitAttr)
	split, err := boolQuery(c, "split", cfg.SplitByDoc)
	if err != nil {
		return evaluation.Options{}, err
	}
	cfg.SplitByDoc = split
	return evaluation.OptionsFromConfig(cfg)
}

func boolQuery(c *gin.Context, key string, def bool) (bool, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func (s *Server) listRuns(c *gin.Context) {
	if s.runs == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("run store not configured"))
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			abort(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []types.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// getRun recomputes the metrics of a stored run.
func (s *Server) getRun(c *gin.Context) {
	if s.runs == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("run store not configured"))
		return
	}
	run, err := s.runs.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		abort(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	summary, err := report.Summarize(evaluation.FromRun(run))
	if err != nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	summary.RunID = run.ID
	summary.Dataset = run.Dataset
	c.JSON(http.StatusOK, summary)
}

func (s *Server) deleteRun(c *gin.Context) {
	if s.runs == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("run store not configured"))
		return
	}
	err := s.runs.DeleteRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		abort(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}
