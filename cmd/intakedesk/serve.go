package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intakedesk/internal/analysis"
	"intakedesk/internal/db"
	"intakedesk/internal/guard"
	"intakedesk/internal/server"
	"intakedesk/internal/storage"
	"intakedesk/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsConfig)
	fileStorage := storage.NewS3Storage(s3Client, config.StorageBucketName, config.StoragePublicBaseURL)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	needsRepo := store.NewNeedRepository(pool)
	filesRepo := store.NewNeedFileRepository(pool)
	analysesRepo := store.NewNeedAnalysisRepository(pool)
	usersRepo := store.NewUserRepository(pool)
	settingsRepo := store.NewSettingsRepository(pool)

	limiter := guard.NewRateLimiter(time.Duration(config.RateLimitWindowSec)*time.Second, config.RateLimitMax)
	limiter.StartSweeping(ctx, time.Minute)
	intakeGuard := guard.New(limiter)

	completer, err := analysis.NewGeminiCompleter(ctx, config.GeminiAPIKey, config.GeminiModel)
	if err != nil {
		return err
	}
	engine := analysis.NewEngine(needsRepo, analysesRepo, completer, logger)

	srv, err := server.New(
		config,
		logger,
		needsRepo,
		filesRepo,
		analysesRepo,
		usersRepo,
		settingsRepo,
		intakeGuard,
		engine,
		fileStorage,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
