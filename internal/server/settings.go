package server

import (
	"encoding/json"
	"net/http"
)

func (s *Service) handleGetSettings(w http.ResponseWriter, r *http.Request) {

	settings, err := s.settingsRepo.Settings(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch settings")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (s *Service) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {

	var body struct {
		MaintenanceMode *bool `json:"maintenanceMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if body.MaintenanceMode == nil {
		s.respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	settings, err := s.settingsRepo.SetMaintenanceMode(r.Context(), *body.MaintenanceMode)
	if err != nil {
		s.logger.WithError(err).Error("failed to update settings")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.logger.WithField("maintenance_mode", settings.MaintenanceMode).Info("settings updated")

	s.respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}
