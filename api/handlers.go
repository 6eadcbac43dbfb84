package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"polypath/app"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

const executeTimeout = 120 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req app.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.draft.Draft(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRealize(w http.ResponseWriter, r *http.Request) {
	var req app.RealizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.realize.Realize(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type refineRequest struct {
	RoadmapID string `json:"roadmapId"`
	AgentID   string `json:"agentId"`
	Prompt    string `json:"prompt"`
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.realize.Refine(r.Context(), req.RoadmapID, req.AgentID, req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type selectAgentRequest struct {
	AgentID string `json:"agentId"`
}

func (s *Server) handleSelectAgent(w http.ResponseWriter, r *http.Request) {
	roadmapID := chi.URLParam(r, "id")

	var req selectAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.realize.SelectAgent(r.Context(), roadmapID, req.AgentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type executeRequest struct {
	SandboxID string `json:"sandboxId"`
	Code      string `json:"code"`
}

type executeResponse struct {
	Output   string `json:"output"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exitCode"`
}

// handleExecute runs code inside a sandbox created during a realization.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}
	if req.SandboxID == "" || req.Code == "" {
		writeError(w, apperrors.ValidationError("sandboxId and code are required"))
		return
	}

	session, err := s.sandbox.Connect(r.Context(), req.SandboxID)
	if err != nil {
		writeError(w, apperrors.NotFound("sandbox"))
		return
	}

	result := s.sandbox.Run(r.Context(), session, req.Code, ports.RunOpts{Timeout: executeTimeout})
	writeJSON(w, http.StatusOK, executeResponse{
		Output:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	})
}

func (s *Server) handleJobSearch(w http.ResponseWriter, r *http.Request) {
	var req app.JobSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.jobSearch.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRoadmapJobs runs a job search and attaches the outcome to a record.
func (s *Server) handleRoadmapJobs(w http.ResponseWriter, r *http.Request) {
	var req app.JobSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.jobSearch.AttachToRoadmap(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResumeUpload(w http.ResponseWriter, r *http.Request) {
	var req app.ResumeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.resume.Upload(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResumeGenerate(w http.ResponseWriter, r *http.Request) {
	var req app.ResumeGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid JSON payload"))
		return
	}

	resp, err := s.resume.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	rec, err := s.roadmaps.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":                rec.ID,
		"config":            rec.Config,
		"strategies":        rec.Strategies,
		"selected_strategy": rec.SelectedStrategy,
		"status":            rec.Status,
		"logs":              rec.Logs,
		"sandbox_id":        rec.SandboxID,
		"final_roadmap":     rec.FinalRoadmap,
		"agent_roadmaps":    rec.AgentRoadmaps,
		"selected_agent_id": rec.SelectedAgentID,
		"jobs":              rec.Jobs,
		"created_at":        rec.CreatedAt,
	})
}

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, apperrors.ValidationError("userId query parameter is required"))
		return
	}

	summaries, err := s.roadmaps.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roadmaps": summaries})
}
