package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/goldlab/assay-api/internal/api"
	"github.com/goldlab/assay-api/internal/cache"
	"github.com/goldlab/assay-api/internal/config"
	"github.com/goldlab/assay-api/internal/db"
	"github.com/goldlab/assay-api/internal/logger"
	"github.com/goldlab/assay-api/internal/repository"
	"github.com/goldlab/assay-api/internal/repository/dao"
	"github.com/goldlab/assay-api/internal/service"
)

const (
	defaultConfigPath = "./cmd/app/config.yml"
	shutdownTimeout   = 5 * time.Second
)

func Start() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = db.Migrate(ctx, postgresDB); err != nil {
		return fmt.Errorf("failed to run migrations -> %w", err)
	}

	redisCache := cache.New(ctx, conf.Redis)
	defer func() { _ = redisCache.Close() }()

	authSvc := service.NewAuthService(repository.NewUserRepository(dao.NewUserDAO(postgresDB)))
	if err = authSvc.EnsureAdmin(ctx, conf.Admin); err != nil {
		return fmt.Errorf("failed to create the first admin -> %w", err)
	}

	s, err := api.NewServer(conf, postgresDB, redisCache)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	s.RunBackground(ctx)

	// Shop details printed on documents can change without a restart.
	err = config.Watch(configPath,
		func(c *config.AppConfig) {
			s.Renderer.SetShop(c.Shop)
			zap.L().Info("shop details reloaded", zap.String("file", configPath))
		},
		func(err error) {
			zap.L().Warn("config reload failed", zap.Error(err))
		},
	)
	if err != nil {
		zap.L().Warn("config watch disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + conf.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}
