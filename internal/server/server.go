package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"intakedesk/internal/analysis"
	"intakedesk/internal/guard"
	"intakedesk/internal/storage"
	"intakedesk/internal/store"
	"intakedesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	needsRepo    *store.NeedRepository
	filesRepo    *store.NeedFileRepository
	analysesRepo *store.NeedAnalysisRepository
	usersRepo    *store.UserRepository
	settingsRepo *store.SettingsRepository

	guard   *guard.Guard
	engine  *analysis.Engine
	storage *storage.S3Storage

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	needsRepo *store.NeedRepository,
	filesRepo *store.NeedFileRepository,
	analysesRepo *store.NeedAnalysisRepository,
	usersRepo *store.UserRepository,
	settingsRepo *store.SettingsRepository,
	intakeGuard *guard.Guard,
	engine *analysis.Engine,
	fileStorage *storage.S3Storage,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		needsRepo:    needsRepo,
		filesRepo:    filesRepo,
		analysesRepo: analysesRepo,
		usersRepo:    usersRepo,
		settingsRepo: settingsRepo,

		guard:   intakeGuard,
		engine:  engine,
		storage: fileStorage,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/needs", s.handleIntakeSubmit, http.MethodPost)

	r.HandleFunc("/api/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handlePostLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/auth/me", s.handleGetMe, http.MethodGet)
		r.HandleFunc("/api/auth/change-password", s.handleChangePassword, http.MethodPost)

		r.HandleFunc("/api/admin/needs", s.handleListNeeds, http.MethodGet)
		r.HandleFunc("/api/admin/needs/:needID", s.handleGetNeed, http.MethodGet)
		r.HandleFunc("/api/admin/needs/:needID", s.handleUpdateNeed, http.MethodPatch)
		r.HandleFunc("/api/admin/needs/:needID", s.handleArchiveNeed, http.MethodDelete)
		r.HandleFunc("/api/admin/needs/:needID/restore", s.handleRestoreNeed, http.MethodPost)
		r.HandleFunc("/api/admin/needs/:needID/analyze", s.handleAnalyzeNeed, http.MethodPost)
		r.HandleFunc("/api/admin/needs/:needID/analyses", s.handleListAnalyses, http.MethodGet)
		r.HandleFunc("/api/admin/needs/:needID/export", s.handleExportNeed, http.MethodGet)

		r.HandleFunc("/api/admin/settings", s.handleGetSettings, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAdmin)

			r.HandleFunc("/api/admin/users", s.handleListUsers, http.MethodGet)
			r.HandleFunc("/api/admin/users", s.handleCreateUser, http.MethodPost)
			r.HandleFunc("/api/admin/users/:userID", s.handleUpdateUser, http.MethodPatch)
			r.HandleFunc("/api/admin/users/:userID", s.handleDeleteUser, http.MethodDelete)

			r.HandleFunc("/api/admin/settings", s.handleUpdateSettings, http.MethodPatch)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Service) sessionFromContext(ctx context.Context) (*sessionClaims, error) {
	claims, ok := ctx.Value(contextKeySession).(*sessionClaims)
	if !ok {
		return nil, fmt.Errorf("session not found in context")
	}
	return claims, nil
}
