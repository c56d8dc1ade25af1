package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"healthpredict/db"
	"healthpredict/ml"
	"healthpredict/monitoring"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500

	SourceForm      = "form"
	SourceAPI       = "api"
	SourceWebSocket = "websocket"
)

// Options carries the dependencies a Handler serves from. Only Dispatcher
// is required; History, Metrics and Performance may be nil.
type Options struct {
	Dispatcher     *ml.Dispatcher
	Status         monitoring.ModelStatus
	History        *db.Store
	Metrics        *monitoring.MetricsCollector
	Performance    *monitoring.PerformanceTracker
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Handler serves every route of the service.
type Handler struct {
	dispatcher *ml.Dispatcher
	status     monitoring.ModelStatus
	history    *db.Store
	metrics    *monitoring.MetricsCollector
	perf       *monitoring.PerformanceTracker
	logger     *zap.Logger
	origins    []string
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		dispatcher: opts.Dispatcher,
		status:     opts.Status,
		history:    opts.History,
		metrics:    opts.Metrics,
		perf:       opts.Performance,
		logger:     logger,
		origins:    opts.AllowedOrigins,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handleFormSubmit)

	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/ws/predict", h.handleWebSocket)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /metrics", h.handlePrometheus)
}

// PredictResponse is the JSON body of a successful prediction.
type PredictResponse struct {
	Sleep    ml.Label           `json:"sleep_quality"`
	Stress   ml.Label           `json:"stress_level"`
	Features map[string]float64 `json:"features"`
}

func newPredictResponse(vector ml.FeatureVector, prediction ml.Prediction) PredictResponse {
	return PredictResponse{
		Sleep:    prediction.Sleep,
		Stress:   prediction.Stress,
		Features: vector.Map(),
	}
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeRawInput(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	vector := ml.Normalize(raw)
	prediction, err := h.predict(r.Context(), SourceAPI, vector)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ml.ErrArtifactsUnavailable) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, newPredictResponse(vector, prediction))
}

// decodeRawInput reads a JSON object from the body. An empty body is an
// empty input, which normalizes to all zeros.
func decodeRawInput(r *http.Request) (ml.RawInput, error) {
	raw := ml.RawInput{}
	if r.Body == nil {
		return raw, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return ml.RawInput{}, nil
		}
		return nil, err
	}
	return raw, nil
}

// predict dispatches vector and records the outcome in metrics and
// history. History failures are logged, never returned.
func (h *Handler) predict(ctx context.Context, source string, vector ml.FeatureVector) (ml.Prediction, error) {
	labels := map[string]string{"source": source}

	start := time.Now()
	prediction, err := h.dispatcher.PredictAll(ctx, vector)
	h.perf.Record(source, time.Since(start), err != nil)
	if err != nil {
		if errors.Is(err, ml.ErrArtifactsUnavailable) {
			h.metrics.IncrCounter(monitoring.MetricPredictionsUnavailable, 1, labels)
		} else {
			h.metrics.IncrCounter(monitoring.MetricPredictionsFailed, 1, labels)
			h.logger.Error("prediction failed",
				zap.String("source", source),
				zap.String("request_id", GetRequestID(ctx)),
				zap.Error(err),
			)
		}
		return ml.Prediction{}, err
	}

	h.metrics.IncrCounter(monitoring.MetricPredictions, 1, labels)
	h.metrics.SetGauge(monitoring.MetricCacheEntries, float64(h.dispatcher.CacheLen()), nil)

	if h.history != nil {
		if _, err := h.history.SavePrediction(ctx, source, vector, prediction); err != nil {
			h.logger.Warn("failed to save prediction", zap.String("source", source), zap.Error(err))
		}
	}
	return prediction, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.status)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		respondError(w, http.StatusNotFound, "metrics disabled")
		return
	}
	respondJSON(w, map[string]interface{}{
		"metrics": h.metrics.Snapshot(),
		"latency": h.perf.Summaries(),
		"system":  h.metrics.GetSystemStats(),
	})
}

func (h *Handler) handlePrometheus(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(h.metrics.ExportPrometheus()))
}

func (h *Handler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusNotFound, "prediction history disabled")
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(l, maxHistoryLimit)
	}

	records, err := h.history.QueryPredictions(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to query predictions", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to query predictions")
		return
	}

	respondJSON(w, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	respondJSONStatus(w, http.StatusOK, data)
}

func respondJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSONStatus(w, status, map[string]string{"error": message})
}
