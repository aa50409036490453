package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"intakedesk/internal/store"
	"intakedesk/pkg/types"

	"github.com/alexedwards/flow"
)

// needListItem is a need with the attachments and latest assessment the
// admin listing shows inline.
type needListItem struct {
	*types.Need
	Files    []types.NeedFile    `json:"files"`
	Analysis *types.NeedAnalysis `json:"analysis"`
}

func (s *Service) handleListNeeds(w http.ResponseWriter, r *http.Request) {

	filter := store.NeedFilter{Page: 1, Limit: 20}

	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("status")); v != "" {
		status := types.NeedStatus(strings.ToUpper(v))
		switch status {
		case types.NeedStatusNew, types.NeedStatusInReview, types.NeedStatusInProgress, types.NeedStatusDone, types.NeedStatusArchived:
			filter.Status = &status
		default:
			s.respondError(w, http.StatusBadRequest, "Statut inconnu")
			return
		}
	}
	if v, err := strconv.ParseUint(query.Get("page"), 10, 64); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.ParseUint(query.Get("limit"), 10, 64); err == nil && v > 0 {
		filter.Limit = v
	}
	filter.Archived = query.Get("archived") == "true"

	needs, total, err := s.needsRepo.Needs(r.Context(), filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to list needs")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	items := make([]needListItem, 0, len(needs))
	for _, need := range needs {
		files, err := s.filesRepo.FilesByNeedID(r.Context(), need.ID)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch need files")
			s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
			return
		}
		latest, err := s.analysesRepo.LatestAnalysis(r.Context(), need.ID)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch analysis")
			s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
			return
		}
		items = append(items, needListItem{Need: need, Files: files, Analysis: latest})
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"needs": items,
		"pagination": map[string]any{
			"page":       filter.Page,
			"limit":      filter.Limit,
			"total":      total,
			"totalPages": (total + filter.Limit - 1) / filter.Limit,
		},
	})
}

func (s *Service) handleGetNeed(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	need, files, err := s.needsRepo.NeedWithFiles(r.Context(), needID)
	if err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	latest, err := s.analysesRepo.LatestAnalysis(r.Context(), needID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch analysis")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"need":     need,
		"files":    files,
		"analysis": latest,
	})
}

func (s *Service) handleUpdateNeed(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	var body struct {
		Status        *string `json:"status"`
		InternalNotes *string `json:"internalNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	if _, err := s.needsRepo.Need(r.Context(), needID); err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	var status *types.NeedStatus
	if body.Status != nil {
		candidate := types.NeedStatus(strings.ToUpper(strings.TrimSpace(*body.Status)))
		switch candidate {
		case types.NeedStatusNew, types.NeedStatusInReview, types.NeedStatusInProgress, types.NeedStatusDone, types.NeedStatusArchived:
			status = &candidate
		default:
			s.respondError(w, http.StatusBadRequest, "Statut inconnu")
			return
		}
	}

	if err := s.needsRepo.UpdateNeed(r.Context(), needID, status, body.InternalNotes); err != nil {
		s.logger.WithError(err).Error("failed to update need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	need, err := s.needsRepo.Need(r.Context(), needID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch need after update")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"need": need})
}

func (s *Service) handleArchiveNeed(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	if _, err := s.needsRepo.Need(r.Context(), needID); err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	if err := s.needsRepo.ArchiveNeed(r.Context(), needID); err != nil {
		s.logger.WithError(err).Error("failed to archive need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Service) handleRestoreNeed(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	if _, err := s.needsRepo.Need(r.Context(), needID); err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	if err := s.needsRepo.RestoreNeed(r.Context(), needID); err != nil {
		s.logger.WithError(err).Error("failed to restore need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleListAnalyses returns the full assessment history, newest first.
// Analyses are append-only so this is the audit trail of re-runs.
func (s *Service) handleListAnalyses(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	if _, err := s.needsRepo.Need(r.Context(), needID); err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	analyses, err := s.analysesRepo.AnalysesByNeedID(r.Context(), needID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch analyses")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

// handleAnalyzeNeed re-runs the assessment synchronously so the admin UI can
// show the fresh result.
func (s *Service) handleAnalyzeNeed(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.config.AnalysisTimeout)*time.Second)
	defer cancel()

	result, err := s.engine.Analyze(ctx, needID)
	if err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		if errors.Is(err, types.ErrUpstream) {
			s.logger.WithError(err).Error("analysis upstream failure")
			s.respondError(w, http.StatusBadGateway, "L'analyse a échoué, réessayez plus tard")
			return
		}
		s.logger.WithError(err).Error("failed to analyze need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"analysis": result})
}
