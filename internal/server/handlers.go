package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/antiplagiat/internal/llm"
	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/metrics"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/store"
)

// Estimated completion times reported on submit, in seconds
const (
	estimateFast = 5
	estimateDeep = 15
)

// CheckRequest is the body of POST /api/v1/check
type CheckRequest struct {
	Text                string `json:"text" validate:"required"`
	Mode                string `json:"mode" validate:"omitempty,oneof=fast deep"`
	Lang                string `json:"lang" validate:"omitempty,oneof=ru en kk"`
	ExcludeQuotes       *bool  `json:"exclude_quotes"`
	ExcludeBibliography *bool  `json:"exclude_bibliography"`
}

// Options converts the request into analysis options, applying defaults
func (r CheckRequest) Options() model.AnalyzeOptions {
	opts := model.DefaultAnalyzeOptions()
	if r.Mode != "" {
		opts.Mode = model.Mode(r.Mode)
	}
	if r.Lang != "" {
		opts.Lang = model.Lang(r.Lang)
	}
	if r.ExcludeQuotes != nil {
		opts.ExcludeQuotes = *r.ExcludeQuotes
	}
	if r.ExcludeBibliography != nil {
		opts.ExcludeBibliography = *r.ExcludeBibliography
	}
	return opts
}

// CheckAccepted is the 202 response of a submit
type CheckAccepted struct {
	TaskID        string            `json:"task_id"`
	Status        model.CheckStatus `json:"status"`
	EstimatedTime int               `json:"estimated_time"`
}

// CompareRequest is the body of POST /api/v1/ai/compare
type CompareRequest struct {
	Reference string `json:"reference" validate:"required"`
	Candidate string `json:"candidate" validate:"required"`
}

// CompareResponse reports a paraphrase verdict
type CompareResponse struct {
	Provider     string  `json:"provider,omitempty"`
	Model        string  `json:"model,omitempty"`
	IsParaphrase bool    `json:"is_paraphrase"`
	Similarity   float64 `json:"similarity"`
	Explanation  string  `json:"explanation,omitempty"`
	Malformed    bool    `json:"malformed,omitempty"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.submit.Allow() {
		renderError(w, errors.New("too many requests"), http.StatusTooManyRequests)
		return
	}

	var req CheckRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		renderError(w, err, http.StatusBadRequest)
		return
	}

	opts := req.Options()
	if err := model.Validate(req.Text, opts); err != nil {
		renderError(w, err, http.StatusUnprocessableEntity)
		return
	}

	rec := &model.CheckRecord{
		TaskID:    uuid.NewString(),
		Status:    model.StatusPending,
		Mode:      opts.Mode,
		Lang:      opts.Lang,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.log.WithError(err).Error("Failed to save pending record")
		renderError(w, errors.New("failed to create task"), http.StatusInternalServerError)
		return
	}
	s.metrics.TaskStatus(string(model.StatusPending))

	estimate := estimateFast
	if opts.Mode == model.ModeDeep {
		estimate = estimateDeep
	}
	accepted := CheckAccepted{
		TaskID:        rec.TaskID,
		Status:        rec.Status,
		EstimatedTime: estimate,
	}

	t := s.track(rec.TaskID)
	s.tasks.Add(1)
	go s.runTask(t, *rec, req.Text, opts)

	renderJSON(w, http.StatusAccepted, accepted)
}

// task is the server-side handle of a background analysis
type task struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	deleted bool
}

func (s *Server) track(taskID string) *task {
	ctx, cancel := context.WithCancel(s.baseCtx)
	t := &task{ctx: ctx, cancel: cancel}
	s.mu.Lock()
	s.active[taskID] = t
	s.mu.Unlock()
	return t
}

func (s *Server) untrack(taskID string) {
	s.mu.Lock()
	delete(s.active, taskID)
	s.mu.Unlock()
}

func (s *Server) lookup(taskID string) *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[taskID]
}

// runTask waits for a free slot, analyzes and stores the outcome.
// rec is owned by this goroutine. A task deleted meanwhile is not saved.
func (s *Server) runTask(t *task, rec model.CheckRecord, text string, opts model.AnalyzeOptions) {
	defer s.tasks.Done()
	defer s.untrack(rec.TaskID)
	defer t.cancel()
	log := s.log.WithFields(logrus.Fields{"task_id": rec.TaskID, "mode": opts.Mode})

	var (
		result *model.DetectionResult
		err    error
	)
	select {
	case s.slots <- struct{}{}:
		ctx, cancel := context.WithTimeout(t.ctx, s.cfg.AnalyzeTimeout)
		result, err = s.analyzer.Analyze(ctx, text, opts)
		cancel()
		<-s.slots
	case <-t.ctx.Done():
		err = fmt.Errorf("task cancelled: %w", t.ctx.Err())
		if s.baseCtx.Err() != nil {
			err = fmt.Errorf("server shutting down: %w", s.baseCtx.Err())
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deleted {
		log.Info("Task deleted before completion, result discarded")
		return
	}

	if err != nil {
		rec.Fail(err, s.now().UTC())
		log.WithError(err).Warn("Analysis failed")
	} else {
		rec.Complete(result, s.now().UTC())
		log.WithField("originality", result.Originality).Info("Analysis completed")
	}
	s.metrics.TaskStatus(string(rec.Status))

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Save(saveCtx, &rec); err != nil {
		log.WithError(err).Error("Failed to save result")
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.renderStoreError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if t := s.lookup(taskID); t != nil {
		// Holding the task lock orders this delete after any in-progress final save
		t.mu.Lock()
		t.deleted = true
		t.cancel()
		defer t.mu.Unlock()
	}
	if err := s.store.Delete(r.Context(), taskID); err != nil {
		s.renderStoreError(w, err)
		return
	}
	s.log.WithField("task_id", taskID).Info("Result deleted")
	renderJSON(w, http.StatusOK, map[string]any{"task_id": taskID, "deleted": true})
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"sources": s.analyzer.Sources()})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	p := s.analyzer.Paraphraser()
	if p == nil || !p.IsEnabled() {
		renderError(w, llm.ErrDisabled, http.StatusServiceUnavailable)
		return
	}

	var req CompareRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		renderError(w, err, http.StatusBadRequest)
		return
	}

	verdict, err := p.Compare(r.Context(), req.Reference, req.Candidate)
	malformed := errors.Is(err, llm.ErrMalformedVerdict)
	switch {
	case malformed:
		s.metrics.ExternalCall("paraphrase", metrics.OutcomeInvalid)
	case err != nil:
		s.metrics.ExternalCall("paraphrase", metrics.OutcomeError)
		s.log.WithError(err).Warn("Paraphrase compare failed")
		renderError(w, err, http.StatusBadGateway)
		return
	default:
		s.metrics.ExternalCall("paraphrase", metrics.OutcomeOK)
	}

	resp := CompareResponse{Malformed: malformed}
	if named, ok := p.(interface{ ProviderName() string }); ok {
		resp.Provider = named.ProviderName()
	}
	if verdict != nil {
		resp.Model = verdict.Model
		resp.IsParaphrase = verdict.IsParaphrase
		resp.Similarity = verdict.Similarity
		resp.Explanation = verdict.Explanation
	}
	renderJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"version":          s.version,
		"external_enabled": s.analyzer.ExternalEnabled(),
		"in_flight":        len(s.slots),
	})
}

func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s: failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

func (s *Server) renderStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		renderError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	s.log.WithError(err).Error("Store failure")
	renderError(w, errors.New("storage error"), http.StatusInternalServerError)
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.GetLogger().WithError(err).Warn("Failed to encode response")
	}
}

func renderError(w http.ResponseWriter, err error, status int) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	renderJSON(w, status, ErrorResponse{Message: err.Error()})
}
