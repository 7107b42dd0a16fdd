package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"schoolprofile/cmd"
	"schoolprofile/internal/profile"
)

// APIHandler handles JSON API requests
type APIHandler struct {
	Service    *ProfileService
	Overviewer *AISummaryService
}

// profileRequest reads level, school, compare and year_<family> query
// parameters.
func profileRequest(r *http.Request) cmd.ProfileRequest {
	q := r.URL.Query()
	req := cmd.ProfileRequest{
		GradeLevel: q.Get("level"),
		School:     q.Get("school"),
		Compare:    q.Get("compare"),
	}
	for _, f := range profile.YearFamilies {
		if y := q.Get("year_" + string(f)); y != "" {
			if req.Years == nil {
				req.Years = make(map[string]string)
			}
			req.Years[string(f)] = y
		}
	}
	return req
}

// statusFor maps profile errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, profile.ErrUnknownIdentity):
		return http.StatusNotFound
	case errors.Is(err, profile.ErrUnknownYear), errors.Is(err, profile.ErrUnknownGradeLevel):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("API error: %v", err)
	}
	respondJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}

// GradeLevels lists the grade clusters in the data
func (h *APIHandler) GradeLevels(w http.ResponseWriter, r *http.Request) {
	levels := h.Service.GradeLevels()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"levels": levels,
		"count":  len(levels),
	})
}

// Schools lists schools at a level whose name starts with ?q=
func (h *APIHandler) Schools(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	query := r.URL.Query().Get("q")

	schools, err := h.Service.Schools(level, query)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"schools": schools,
		"count":   len(schools),
		"query":   query,
		"level":   level,
	})
}

// Years lists the years a metric has data for at a level
func (h *APIHandler) Years(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	name := r.URL.Query().Get("metric")
	metric, ok := profile.ParseMetric(name)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown metric " + name,
		})
		return
	}

	years, err := h.Service.Years(level, metric)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metric": metric,
		"years":  years,
	})
}

// Profile builds a full profile
func (h *APIHandler) Profile(w http.ResponseWriter, r *http.Request) {
	req := profileRequest(r)
	if req.School == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "school is required",
		})
		return
	}

	p, err := h.Service.Profile(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Trend returns the time series for one metric
func (h *APIHandler) Trend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric, ok := profile.ParseMetric(q.Get("metric"))
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown metric " + q.Get("metric"),
		})
		return
	}

	series, err := h.Service.Trend(q.Get("level"), metric, q.Get("school"), q.Get("compare"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// Validate reports row-shape and strict-matching issues
func (h *APIHandler) Validate(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Service.Validate()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(issues) == 0,
		"issues": issues,
		"count":  len(issues),
	})
}

// Overview handles API requests for an AI overview. The body is a
// ProfileRequest.
func (h *APIHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if h.Overviewer == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "AI overview not available: ANTHROPIC_API_KEY not set",
		})
		return
	}

	var req cmd.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}

	p, err := h.Service.Profile(req)
	if err != nil {
		respondError(w, err)
		return
	}

	text, err := h.Overviewer.Overview(r.Context(), p)
	if err != nil {
		log.Printf("AI overview error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "AI overview failed: " + err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"title":    p.Title,
		"overview": text,
	})
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}
