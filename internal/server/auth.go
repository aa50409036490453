package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"intakedesk/pkg/types"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type sessionClaims struct {
	UserID             string     `json:"userId"`
	Email              string     `json:"email"`
	Role               types.Role `json:"role"`
	MustChangePassword bool       `json:"mustChangePassword"`
	jwt.RegisteredClaims
}

func (s *Service) issueSessionToken(user *types.User) (string, error) {
	now := time.Now()

	claims := sessionClaims{
		UserID:             user.ID,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.SessionMaxAgeSec) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

func (s *Service) parseSessionToken(token string) (*sessionClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	return &claims, nil
}

func (s *Service) setSessionCookie(w http.ResponseWriter, user *types.User) error {
	token, err := s.issueSessionToken(user)
	if err != nil {
		return err
	}

	encrypted, err := s.cookie.Encode(sessionCookieName, token)
	if err != nil {
		return fmt.Errorf("failed to encrypt session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encrypted,
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
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

	user, err := s.usersRepo.UserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, types.ErrUserNotFound) {
			s.logger.WithError(err).Error("failed to fetch user for login")
		}
		s.respondError(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}

	if user.DeletedAt != nil || !user.IsActive {
		s.respondError(w, http.StatusForbidden, "Ce compte a été désactivé")
		return
	}

	if err := s.setSessionCookie(w, user); err != nil {
		s.logger.WithError(err).Error("failed to issue session")
		s.respondError(w, http.StatusInternalServerError, "Connexion impossible")
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	s.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Service) handleGetMe(w http.ResponseWriter, r *http.Request) {

	claims, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	user, err := s.usersRepo.User(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Service) handleChangePassword(w http.ResponseWriter, r *http.Request) {

	claims, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	if len(body.NewPassword) < 8 {
		s.respondError(w, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
		return
	}

	user, err := s.usersRepo.User(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	// A forced password change skips the current-password check since the
	// user only knows the temporary password they just logged in with.
	if !user.MustChangePassword {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			s.respondError(w, http.StatusUnauthorized, "Mot de passe actuel incorrect")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.respondError(w, http.StatusInternalServerError, "Changement de mot de passe impossible")
		return
	}

	if err := s.usersRepo.SetPassword(r.Context(), user.ID, string(hash)); err != nil {
		s.logger.WithError(err).Error("failed to update password")
		s.respondError(w, http.StatusInternalServerError, "Changement de mot de passe impossible")
		return
	}

	// Reissue the session so the must-change flag in the token is current.
	user.MustChangePassword = false
	if err := s.setSessionCookie(w, user); err != nil {
		s.logger.WithError(err).Error("failed to reissue session")
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
