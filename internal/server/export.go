package server

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"intakedesk/pkg/types"

	"github.com/alexedwards/flow"
)

//go:embed templates
var templateFS embed.FS

var exportTemplate = template.Must(template.New("export.html").Funcs(template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"derefOr": func(s *string, defaultVal string) string {
		if s == nil {
			return defaultVal
		}
		return *s
	},
	"euros": func(f *float64) string {
		if f == nil {
			return "Non précisé"
		}
		return strconv.FormatFloat(*f, 'f', -1, 64) + " €"
	},
	"kilobytes": func(size int64) string {
		if size <= 0 {
			return "Taille inconnue"
		}
		return strconv.FormatFloat(float64(size)/1024, 'f', 2, 64) + " KB"
	},
	"frdate": func(t time.Time) string {
		return t.Format("02/01/2006 15:04")
	},
	"priorityColor": func(p types.Priority) string {
		switch p {
		case types.PriorityHigh:
			return "#ef4444"
		case types.PriorityMedium:
			return "#f59e0b"
		case types.PriorityLow:
			return "#10b981"
		}
		return "#6b7280"
	},
	"priorityLabel": func(p types.Priority) string {
		switch p {
		case types.PriorityHigh:
			return "Haute"
		case types.PriorityMedium:
			return "Moyenne"
		case types.PriorityLow:
			return "Basse"
		}
		return string(p)
	},
}).ParseFS(templateFS, "templates/export.html")).Lookup("export.html")

type exportData struct {
	Need        *types.Need
	Files       []types.NeedFile
	Analysis    *types.NeedAnalysis
	GeneratedAt time.Time
}

// handleExportNeed renders a printable dossier of the need and its latest
// assessment. The browser's print dialog takes it from there.
func (s *Service) handleExportNeed(w http.ResponseWriter, r *http.Request) {

	needID := flow.Param(r.Context(), "needID")

	need, files, err := s.needsRepo.NeedWithFiles(r.Context(), needID)
	if err != nil {
		if errors.Is(err, types.ErrNeedNotFound) {
			s.respondError(w, http.StatusNotFound, "Demande introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch need for export")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	latest, err := s.analysesRepo.LatestAnalysis(r.Context(), needID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch analysis for export")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = exportTemplate.Execute(w, exportData{
		Need:        need,
		Files:       files,
		Analysis:    latest,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to render export")
	}
}
