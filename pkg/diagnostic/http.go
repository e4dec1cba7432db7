package diagnostic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/diagnostic/pkg/common/logger"
	"github.com/synaptica-ai/diagnostic/pkg/common/models"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/limiter"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/middleware"
)

const (
	apiName    = "Diabetes Detection API"
	apiVersion = "1.0.0"
)

type HTTPHandler struct {
	service *Service
	limiter limiter.Limiter
}

// NewHTTPHandler builds the handler; a nil limiter leaves /diagnostic unthrottled.
func NewHTTPHandler(service *Service, l limiter.Limiter) *HTTPHandler {
	return &HTTPHandler{service: service, limiter: l}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/diagnostic").Subrouter()
	if h.limiter != nil {
		api.Use(middleware.RateLimit(h.limiter))
	}
	api.HandleFunc("/invoke", h.handleInvoke).Methods(http.MethodPost)
	api.HandleFunc("/stream", h.handleStream).Methods(http.MethodPost)
	api.HandleFunc("/predict", h.handlePredict).Methods(http.MethodPost)
	api.HandleFunc("/models", h.handleModels).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": apiName,
		"version": apiVersion,
		"docs":    "/docs",
	})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"message":   "Server is running",
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
}

func (h *HTTPHandler) handleModels(w http.ResponseWriter, r *http.Request) {
	gw := h.service.Gateway()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"provider": gw.Name(),
		"model":    gw.ChatModel().Model,
		"models":   gw.AvailableModels(),
	})
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	result, err := h.service.Predict(patient)
	if err != nil {
		logger.WithRequestID(middleware.RequestID(r.Context())).WithError(err).Error("Prediction failed")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error predicting diabetes: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Diagnose(r.Context(), patient)
	if err != nil {
		logger.WithRequestID(middleware.RequestID(r.Context())).WithError(err).Error("Diagnostic report failed")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error generating diagnostic report: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStream holds the response headers until the first chunk arrives so
// that an upstream failure can still be reported as a 500.
func (h *HTTPHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequestID(middleware.RequestID(r.Context()))
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	seq, err := h.service.GenerateDiagnosticReportStream(r.Context(), patient)
	if err != nil {
		log.WithError(err).Error("Diagnostic stream failed")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error streaming diagnostic report: %v", err))
		return
	}

	next, stop := iter.Pull2(seq)
	defer stop()

	chunk, err, more := next()
	if err != nil {
		log.WithError(err).Error("Diagnostic stream failed before first chunk")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error streaming diagnostic report: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	for more {
		if _, werr := io.WriteString(w, chunk); werr != nil {
			log.WithError(werr).Warn("Client went away during diagnostic stream")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}

		chunk, err, more = next()
		if err != nil {
			log.WithError(err).Error("Diagnostic stream interrupted")
			return
		}
	}
}

func (h *HTTPHandler) decodePatient(w http.ResponseWriter, r *http.Request) (models.PatientData, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return models.PatientData{}, false
		}
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return models.PatientData{}, false
	}

	patient, err := DecodePatient(body)
	switch {
	case err == nil:
		return patient, true
	case IsValidationError(err):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrMalformedBody):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithRequestID(middleware.RequestID(r.Context())).WithError(err).Error("Failed to decode patient")
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
	return models.PatientData{}, false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
