package tracker

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"speedrun-tracker/internal/platform/metrics"
	"speedrun-tracker/internal/speedrun"

	"github.com/go-chi/chi/v5"
)

const splitsContentType = "text/plain; charset=utf-8"

// Handler exposes tracker HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Routes mounts every tracker endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/definitions", h.ListDefinitions)
	r.Route("/definitions/{definition_id}", func(r chi.Router) {
		r.Post("/runs", h.StartRun)
		r.Post("/steps/{step_id}/complete", h.CompleteDefinitionStep)
	})
	r.Get("/runs", h.ListRuns)
	r.Route("/runs/{run_id}", func(r chi.Router) {
		r.Get("/", h.GetRun)
		r.Delete("/", h.DiscardRun)
		r.Get("/splits.txt", h.GetSplits)
		r.Post("/pause", h.PauseRun)
		r.Post("/resume", h.ResumeRun)
		r.Post("/cancel", h.CancelRun)
		r.Post("/segments/{segment_id}/finish", h.FinishSegment)
		r.Post("/segments/{segment_id}/cancel", h.CancelSegment)
		r.Post("/steps/{step_id}/complete", h.CompleteStep)
	})
}

// ListDefinitions handles GET /definitions.
func (h *Handler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Definitions())
}

// StartRun handles POST /definitions/{definition_id}/runs.
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	defID := DefinitionID(chi.URLParam(r, "definition_id"))
	if defID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	snap, err := h.svc.StartRun(defID)
	if err != nil {
		h.writeError(w, "start run", err, slog.String("definition_id", string(defID)))
		return
	}

	h.log.Info("run started",
		slog.String("definition_id", string(defID)),
		slog.String("run_id", string(snap.ID)))
	h.writeJSON(w, http.StatusCreated, snap)
}

// CompleteDefinitionStep handles POST /definitions/{definition_id}/steps/{step_id}/complete.
func (h *Handler) CompleteDefinitionStep(w http.ResponseWriter, r *http.Request) {
	defID := DefinitionID(chi.URLParam(r, "definition_id"))
	stepID := chi.URLParam(r, "step_id")
	if defID == "" || stepID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	snap, err := h.svc.CompleteStepByDefinition(defID, stepID)
	if err != nil {
		h.writeError(w, "complete step", err,
			slog.String("definition_id", string(defID)),
			slog.String("step_id", stepID))
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// ListRuns handles GET /runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.List())
}

// GetRun handles GET /runs/{run_id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Snapshot(RunID(chi.URLParam(r, "run_id")))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// GetSplits handles GET /runs/{run_id}/splits.txt.
func (h *Handler) GetSplits(w http.ResponseWriter, r *http.Request) {
	splits, ok := h.svc.Splits(RunID(chi.URLParam(r, "run_id")))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", splitsContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(splits))
}

// DiscardRun handles DELETE /runs/{run_id}.
func (h *Handler) DiscardRun(w http.ResponseWriter, r *http.Request) {
	id := RunID(chi.URLParam(r, "run_id"))
	if err := h.svc.Discard(id); err != nil {
		h.writeError(w, "discard run", err, slog.String("run_id", string(id)))
		return
	}
	h.log.Info("run discarded", slog.String("run_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// PauseRun handles POST /runs/{run_id}/pause.
func (h *Handler) PauseRun(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, "pause run", h.svc.Pause)
}

// ResumeRun handles POST /runs/{run_id}/resume.
func (h *Handler) ResumeRun(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, "resume run", h.svc.Resume)
}

// CancelRun handles POST /runs/{run_id}/cancel.
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, "cancel run", h.svc.Cancel)
}

// FinishSegment handles POST /runs/{run_id}/segments/{segment_id}/finish.
func (h *Handler) FinishSegment(w http.ResponseWriter, r *http.Request) {
	segID := chi.URLParam(r, "segment_id")
	h.runCommand(w, r, "finish segment", func(id RunID) (RunSnapshot, error) {
		return h.svc.FinishSegment(id, segID)
	})
}

// CancelSegment handles POST /runs/{run_id}/segments/{segment_id}/cancel.
func (h *Handler) CancelSegment(w http.ResponseWriter, r *http.Request) {
	segID := chi.URLParam(r, "segment_id")
	h.runCommand(w, r, "cancel segment", func(id RunID) (RunSnapshot, error) {
		return h.svc.CancelSegment(id, segID)
	})
}

// CompleteStep handles POST /runs/{run_id}/steps/{step_id}/complete.
func (h *Handler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "step_id")
	h.runCommand(w, r, "complete step", func(id RunID) (RunSnapshot, error) {
		return h.svc.CompleteStep(id, stepID)
	})
}

func (h *Handler) runCommand(w http.ResponseWriter, r *http.Request, op string, fn func(RunID) (RunSnapshot, error)) {
	id := RunID(chi.URLParam(r, "run_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	snap, err := fn(id)
	if err != nil {
		h.writeError(w, op, err, slog.String("run_id", string(id)))
		return
	}
	h.log.Debug(op, slog.String("run_id", string(id)), slog.String("time", snap.Time))
	h.writeJSON(w, http.StatusOK, snap)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps not-found errors to 404 and rejected transitions to 409.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status := statusFor(err)
	args := append([]any{slog.String("error", err.Error())}, attrs...)
	if status == http.StatusConflict && h.metrics != nil {
		h.metrics.IncRejected()
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", args...)
	} else {
		h.log.Info(op+" rejected", args...)
	}
	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound),
		errors.Is(err, ErrDefinitionNotFound),
		errors.Is(err, ErrSegmentNotFound),
		errors.Is(err, ErrStepNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunLive),
		errors.Is(err, speedrun.ErrRunNotStarted),
		errors.Is(err, speedrun.ErrRunAlreadyStarted),
		errors.Is(err, speedrun.ErrRunEnded),
		errors.Is(err, speedrun.ErrRunPaused),
		errors.Is(err, speedrun.ErrRunNotActive),
		errors.Is(err, speedrun.ErrSegmentEnded),
		errors.Is(err, speedrun.ErrSegmentAlreadyFinished),
		errors.Is(err, speedrun.ErrStepAlreadyCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", slog.String("error", err.Error()))
	}
}
