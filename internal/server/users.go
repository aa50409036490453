package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"intakedesk/internal/guard"
	"intakedesk/internal/store"
	"intakedesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func (s *Service) handleListUsers(w http.ResponseWriter, r *http.Request) {

	users, err := s.usersRepo.Users(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list users")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Service) handleCreateUser(w http.ResponseWriter, r *http.Request) {

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		s.respondError(w, http.StatusBadRequest, "Email et mot de passe requis")
		return
	}
	// ValidateEmail treats the field as optional for the intake form, so a
	// blank value must be caught before it.
	if verr := guard.ValidateEmail(email); verr != nil {
		s.respondError(w, http.StatusBadRequest, verr.Reason)
		return
	}
	if len(body.Password) < 8 {
		s.respondError(w, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
		return
	}

	role, ok := parseRole(body.Role)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "Rôle inconnu")
		return
	}

	if _, err := s.usersRepo.UserByEmail(r.Context(), email); err == nil {
		s.respondError(w, http.StatusConflict, "Un compte existe déjà avec cet email")
		return
	} else if !errors.Is(err, types.ErrUserNotFound) {
		s.logger.WithError(err).Error("failed to check existing user")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	user := &types.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		// The initial password is a temporary one handed to the staff
		// member out of band.
		MustChangePassword: true,
		IsActive:           true,
	}
	if err := s.usersRepo.CreateUser(r.Context(), user); err != nil {
		s.logger.WithError(err).Error("failed to create user")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user created")

	s.respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Service) handleUpdateUser(w http.ResponseWriter, r *http.Request) {

	userID := flow.Param(r.Context(), "userID")

	var body struct {
		Email              *string `json:"email"`
		Password           *string `json:"password"`
		Role               *string `json:"role"`
		IsActive           *bool   `json:"isActive"`
		MustChangePassword *bool   `json:"mustChangePassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	var update store.UserUpdate

	if body.Email != nil {
		email := strings.TrimSpace(*body.Email)
		if email == "" {
			s.respondError(w, http.StatusBadRequest, "Format email invalide")
			return
		}
		if verr := guard.ValidateEmail(email); verr != nil {
			s.respondError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		update.Email = &email
	}

	if body.Password != nil {
		if len(*body.Password) < 8 {
			s.respondError(w, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.WithError(err).Error("failed to hash password")
			s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
			return
		}
		hashStr := string(hash)
		update.PasswordHash = &hashStr
		// An admin-set password is temporary until the user picks their
		// own.
		mustChange := true
		update.MustChangePassword = &mustChange
	}

	if body.Role != nil {
		role, ok := parseRole(*body.Role)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "Rôle inconnu")
			return
		}
		update.Role = &role
	}

	update.IsActive = body.IsActive
	if body.MustChangePassword != nil {
		update.MustChangePassword = body.MustChangePassword
	}

	if _, err := s.usersRepo.User(r.Context(), userID); err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondError(w, http.StatusNotFound, "Utilisateur introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	if err := s.usersRepo.UpdateUser(r.Context(), userID, update); err != nil {
		s.logger.WithError(err).Error("failed to update user")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	user, err := s.usersRepo.User(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch user after update")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Service) handleDeleteUser(w http.ResponseWriter, r *http.Request) {

	userID := flow.Param(r.Context(), "userID")

	claims, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if claims.UserID == userID {
		s.respondError(w, http.StatusBadRequest, "Impossible de supprimer votre propre compte")
		return
	}

	if _, err := s.usersRepo.User(r.Context(), userID); err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondError(w, http.StatusNotFound, "Utilisateur introuvable")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	if err := s.usersRepo.SoftDeleteUser(r.Context(), userID); err != nil {
		s.logger.WithError(err).Error("failed to delete user")
		s.respondError(w, http.StatusInternalServerError, "Une erreur est survenue")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func parseRole(v string) (types.Role, bool) {
	switch types.Role(strings.ToUpper(strings.TrimSpace(v))) {
	case types.RoleAdmin:
		return types.RoleAdmin, true
	case types.RoleStaff:
		return types.RoleStaff, true
	}
	return "", false
}
