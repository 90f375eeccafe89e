package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"model-pipeline/core/dataset"
	"model-pipeline/core/jobspec"
	"model-pipeline/core/models"
	"model-pipeline/core/repository"
	"model-pipeline/core/stages"
)

// Logger is the minimal structured logger the handlers need
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// StageHandler handles pipeline stage HTTP requests
type StageHandler struct {
	processing *stages.ProcessingStage
	tuning     *stages.TuningStage
	training   *stages.TrainingStage
	promotion  *stages.PromotionStage
	transform  *stages.TransformStage
	profiler   *dataset.Profiler
	audit      *repository.InvocationRepository
	log        Logger
}

// NewStageHandler creates a new stage handler. audit may be nil when
// invocation auditing is disabled.
func NewStageHandler(
	processing *stages.ProcessingStage,
	tuning *stages.TuningStage,
	training *stages.TrainingStage,
	promotion *stages.PromotionStage,
	transform *stages.TransformStage,
	profiler *dataset.Profiler,
	audit *repository.InvocationRepository,
	log Logger,
) *StageHandler {
	return &StageHandler{
		processing: processing,
		tuning:     tuning,
		training:   training,
		promotion:  promotion,
		transform:  transform,
		profiler:   profiler,
		audit:      audit,
		log:        log,
	}
}

// LaunchProcessing handles POST /v1/stages/processing/launch
func (h *StageHandler) LaunchProcessing(w http.ResponseWriter, r *http.Request) {
	var req models.LaunchProcessingRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.processing.Launch(r.Context(), req)
	h.record("processing", "launch", res.ProcessingJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// ProcessingStatus handles POST /v1/stages/processing/status
func (h *StageHandler) ProcessingStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessingStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.processing.Status(r.Context(), req)
	h.record("processing", "status", req.ProcessingJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// SaveProcessingMetadata handles POST /v1/stages/processing/metadata
func (h *StageHandler) SaveProcessingMetadata(w http.ResponseWriter, r *http.Request) {
	var req models.SaveProcessingMetadataRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.processing.SaveMetadata(r.Context(), req)
	h.record("processing", "metadata", req.ProcessingJobName, false, err, start)
	h.respond(w, res, err)
}

// LaunchTuning handles POST /v1/stages/hpo/launch
func (h *StageHandler) LaunchTuning(w http.ResponseWriter, r *http.Request) {
	var req models.LaunchTuningRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.tuning.Launch(r.Context(), req)
	h.record("hpo", "launch", res.TuningJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// TuningStatus handles POST /v1/stages/hpo/status
func (h *StageHandler) TuningStatus(w http.ResponseWriter, r *http.Request) {
	var req models.TuningStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.tuning.Status(r.Context(), req)
	h.record("hpo", "status", req.TuningJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// SaveTuningMetadata handles POST /v1/stages/hpo/metadata
func (h *StageHandler) SaveTuningMetadata(w http.ResponseWriter, r *http.Request) {
	var req models.SaveTuningMetadataRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.tuning.SaveMetadata(r.Context(), req)
	h.record("hpo", "metadata", req.TuningJobName, false, err, start)
	h.respond(w, res, err)
}

// LaunchTraining handles POST /v1/stages/training/launch
func (h *StageHandler) LaunchTraining(w http.ResponseWriter, r *http.Request) {
	var req models.LaunchTrainingRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.training.Launch(r.Context(), req)
	h.record("training", "launch", res.TrainingJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// TrainingStatus handles POST /v1/stages/training/status
func (h *StageHandler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	var req models.TrainingStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.training.Status(r.Context(), req)
	h.record("training", "status", req.TrainingJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// SaveTrainingMetadata handles POST /v1/stages/training/metadata
func (h *StageHandler) SaveTrainingMetadata(w http.ResponseWriter, r *http.Request) {
	var req models.SaveTrainingMetadataRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.training.SaveMetadata(r.Context(), req)
	h.record("training", "metadata", req.TrainingJobName, false, err, start)
	h.respond(w, res, err)
}

// PromoteModel handles POST /v1/stages/promotion/run
func (h *StageHandler) PromoteModel(w http.ResponseWriter, r *http.Request) {
	var req models.PromoteModelRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.promotion.Run(r.Context(), req)
	h.record("promotion", "run", req.TrainingMetadataName, false, err, start)
	h.respond(w, res, err)
}

// LaunchTransform handles POST /v1/stages/batch/launch
func (h *StageHandler) LaunchTransform(w http.ResponseWriter, r *http.Request) {
	var req models.LaunchTransformRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.transform.Launch(r.Context(), req)
	h.record("batch", "launch", res.TransformJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// TransformStatus handles POST /v1/stages/batch/status
func (h *StageHandler) TransformStatus(w http.ResponseWriter, r *http.Request) {
	var req models.TransformStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.transform.Status(r.Context(), req)
	h.record("batch", "status", req.TransformJobName, req.Debug, err, start)
	h.respond(w, res, err)
}

// SaveTransformMetadata handles POST /v1/stages/batch/metadata
func (h *StageHandler) SaveTransformMetadata(w http.ResponseWriter, r *http.Request) {
	var req models.SaveTransformMetadataRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := h.transform.SaveMetadata(r.Context(), req)
	h.record("batch", "metadata", req.TransformJobName, false, err, start)
	h.respond(w, res, err)
}

// ProfileDataset handles POST /v1/datasets/profile
func (h *StageHandler) ProfileDataset(w http.ResponseWriter, r *http.Request) {
	var req models.DatasetProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.FilePath == "" {
		h.writeError(w, http.StatusBadRequest, "file_path not found in the event payload")
		return
	}

	start := time.Now()
	res, err := h.profiler.Profile(r.Context(), req.FilePath)
	h.record("dataset", "profile", req.FilePath, false, err, start)
	h.respond(w, res, err)
}

// Health handles GET /health
func (h *StageHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StageHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *StageHandler) respond(w http.ResponseWriter, result any, err error) {
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// statusFor maps the error taxonomy onto HTTP statuses. Malformed events
// and incomplete configuration documents are the caller's fault; the rest
// surfaces as a server error.
func statusFor(err error) int {
	var validationErr *stages.ValidationError
	var fieldErr *jobspec.MissingFieldError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *StageHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *StageHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *StageHandler) record(stage, operation, jobName string, debug bool, err error, start time.Time) {
	if h.audit == nil {
		return
	}

	inv := models.StageInvocation{
		Stage:      stage,
		Operation:  operation,
		JobName:    jobName,
		Debug:      debug,
		Outcome:    models.InvocationOK,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		inv.Outcome = models.InvocationFailed
		inv.Error = err.Error()
	}

	if recordErr := h.audit.Record(&inv); recordErr != nil {
		h.log.Error("record stage invocation", "stage", stage, "operation", operation, "error", recordErr)
	}
}
