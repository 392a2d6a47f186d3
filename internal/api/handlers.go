package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bobarin/narrate/internal/manager"
	"github.com/bobarin/narrate/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	manager *manager.Manager
}

func NewHandler(m *manager.Manager) *Handler {
	return &Handler{manager: m}
}

// CreateSpeech handles POST /v1/speech
func (h *Handler) CreateSpeech(w http.ResponseWriter, r *http.Request) {
	var req models.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	jobID, err := h.manager.Submit(req)
	if err != nil {
		if errors.Is(err, manager.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	respondJSON(w, http.StatusCreated, models.SubmitResponse{
		JobID:  jobID,
		Status: models.JobStatusQueued,
	})
}

// GetSpeech handles GET /v1/speech/{id}
func (h *Handler) GetSpeech(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	view, err := h.manager.Status(jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// DownloadSpeech handles GET /v1/speech/{id}/audio
func (h *Handler) DownloadSpeech(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	audio, err := h.manager.FetchAudio(jobID)
	if err != nil {
		switch {
		case errors.Is(err, manager.ErrNotFound):
			respondError(w, http.StatusNotFound, "Job not found")
		case errors.Is(err, manager.ErrNotReady):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Audio unavailable")
		}
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.mp3"`, jobID))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// ListVoices handles GET /v1/voices
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"voices": h.manager.Voices(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
