package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"intakedesk/internal/guard"
	"intakedesk/internal/storage"
	"intakedesk/internal/utils"
	"intakedesk/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxIntakeMemory = 64 << 20

func (s *Service) handleIntakeSubmit(w http.ResponseWriter, r *http.Request) {

	settings, err := s.settingsRepo.Settings(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch settings")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}
	if settings.MaintenanceMode {
		s.respondError(w, http.StatusServiceUnavailable, "Le service est temporairement indisponible")
		return
	}

	if err := r.ParseMultipartForm(maxIntakeMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "Formulaire invalide")
		return
	}

	var intakeForm types.IntakeForm
	if err := decoder.Decode(&intakeForm, r.Form); err != nil {
		s.respondError(w, http.StatusBadRequest, "Formulaire invalide")
		return
	}

	var uploads []*multipart.FileHeader
	if r.MultipartForm != nil {
		uploads = r.MultipartForm.File["files"]
	}

	fileMetas := make([]guard.FileMeta, 0, len(uploads))
	for _, upload := range uploads {
		fileMetas = append(fileMetas, guard.FileMeta{
			Name:     upload.Filename,
			Size:     upload.Size,
			MimeType: upload.Header.Get("Content-Type"),
		})
	}

	decision := s.guard.Evaluate(guard.Request{
		SourceKey: guard.SourceKey(r),
		UserAgent: r.UserAgent(),
		Form:      intakeForm,
		Files:     fileMetas,
	})

	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.RateLimit.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.RateLimit.ResetAt, 10))

	switch decision.Verdict {
	case guard.VerdictReject:
		if decision.Status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", strconv.FormatInt(decision.RateLimit.RetryAfterSec(), 10))
		}
		s.respondError(w, decision.Status, decision.Reason)
		return
	case guard.VerdictRejectSilently:
		// Same success shape as a real submission so the sender learns
		// nothing. The id does not exist anywhere.
		s.logger.WithField("source", guard.SourceKey(r)).Info("honeypot tripped")
		s.respondJSON(w, http.StatusCreated, map[string]any{"id": utils.NanoID(), "success": true})
		return
	}

	need := needFromIntakeForm(intakeForm)
	if err := s.needsRepo.CreateNeed(r.Context(), need); err != nil {
		s.logger.WithError(err).Error("failed to create need")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	for _, upload := range uploads {
		if err := s.storeUpload(r, need.ID, upload); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"need_id": need.ID,
				"file":    upload.Filename,
			}).Error("failed to store upload")
		}
	}

	s.engine.AnalyzeAsync(need.ID, time.Duration(s.config.AnalysisTimeout)*time.Second)

	s.logger.WithFields(logrus.Fields{
		"need_id": need.ID,
		"files":   len(uploads),
	}).Info("need submitted")

	s.respondJSON(w, http.StatusCreated, map[string]any{"id": need.ID, "success": true})
}

func (s *Service) storeUpload(r *http.Request, needID string, upload *multipart.FileHeader) error {
	file, err := upload.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	contentType := upload.Header.Get("Content-Type")
	url, err := s.storage.UploadFile(r.Context(), needID, upload.Filename, contentType, file)
	if err != nil {
		return err
	}

	return s.filesRepo.CreateFile(r.Context(), &types.NeedFile{
		NeedID:       needID,
		Type:         storage.FileTypeFromMime(contentType),
		URL:          url,
		OriginalName: upload.Filename,
		Size:         upload.Size,
		MimeType:     contentType,
	})
}

func needFromIntakeForm(f types.IntakeForm) *types.Need {
	need := &types.Need{
		ClientName:         strings.TrimSpace(f.ClientName),
		ClientEmail:        utils.NullableString(strings.TrimSpace(f.ClientEmail)),
		ClientPhone:        utils.NullableString(strings.TrimSpace(f.ClientPhone)),
		CompanyName:        utils.NullableString(strings.TrimSpace(f.CompanyName)),
		ProblemDescription: strings.TrimSpace(f.ProblemDescription),
		CurrentSituation:   strings.TrimSpace(f.CurrentSituation),
		DesiredSolution:    strings.TrimSpace(f.DesiredSolution),
		KnownAppReferences: utils.NullableString(strings.TrimSpace(f.KnownAppReferences)),
		DeadlinePreference: utils.NullableString(strings.TrimSpace(f.DeadlinePreference)),
		Language:           utils.NullableString(strings.TrimSpace(f.Language)),
		Priority:           parsePriority(f.Priority),
		Status:             types.NeedStatusNew,
	}

	if v, err := strconv.ParseFloat(f.BudgetMin, 64); err == nil {
		need.BudgetMin = utils.Float64Ptr(v)
	}
	if v, err := strconv.ParseFloat(f.BudgetMax, 64); err == nil {
		need.BudgetMax = utils.Float64Ptr(v)
	}

	return need
}

func parsePriority(v string) types.Priority {
	switch types.Priority(strings.ToUpper(strings.TrimSpace(v))) {
	case types.PriorityLow:
		return types.PriorityLow
	case types.PriorityHigh:
		return types.PriorityHigh
	default:
		return types.PriorityMedium
	}
}
