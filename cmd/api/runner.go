package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"vidshare-api/internal/auth"
	"vidshare-api/internal/config"
	"vidshare-api/internal/database"
	"vidshare-api/internal/database/mongodb"
	"vidshare-api/internal/database/sqlite"
	"vidshare-api/internal/media"
	"vidshare-api/internal/middleware"
	"vidshare-api/internal/routes"
	"vidshare-api/internal/services"
	"vidshare-api/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
)

// Runner holds the loaded configuration and provides the command actions.
type Runner struct {
	config *config.Config
	logger *log.Logger
}

// Load reads the configuration before any command runs. A config path given
// on the command line must exist.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.IsSet("config"))
	if err != nil {
		return ctx, err
	}
	r.config = cfg
	r.logger = utils.NewLogger(nil, cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)
	return ctx, nil
}

func (r *Runner) openStore(ctx context.Context) (database.Store, error) {
	switch r.config.Database.Driver {
	case "mongo":
		r.logger.Info("connecting to mongodb", "database", r.config.Database.MongoDatabase)
		return mongodb.Open(ctx, r.config.Database.MongoURI, r.config.Database.MongoDatabase)
	default:
		r.logger.Info("opening sqlite database", "path", r.config.Database.SQLitePath)
		return sqlite.Open(r.config.Database.SQLitePath)
	}
}

// openMedia returns the media store and, for the disk driver, the directory
// to serve under /media.
func (r *Runner) openMedia(ctx context.Context) (media.Store, string, error) {
	mc := r.config.Media
	switch mc.Driver {
	case media.DriverMinio:
		store, err := media.NewMinioStore(media.MinioConfig{
			Endpoint:  mc.MinioEndpoint,
			AccessKey: mc.MinioAccessKey,
			SecretKey: mc.MinioSecretKey,
			Bucket:    mc.MinioBucket,
			Secure:    mc.MinioSecure,
			PublicURL: mc.MinioPublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		r.logger.Info("using minio media store", "endpoint", mc.MinioEndpoint, "bucket", mc.MinioBucket)
		return store, "", nil
	default:
		store, err := media.NewDiskStore(mc.DiskPath, mc.DiskBaseURL)
		if err != nil {
			return nil, "", err
		}
		r.logger.Info("using disk media store", "root", store.Root())
		return store, store.Root(), nil
	}
}

func (r *Runner) services(store database.Store, mediaStore media.Store) (*services.Services, *auth.TokenManager) {
	tokens := auth.NewTokenManager(r.config.Auth.JWTSecret, r.config.Auth.TokenTTL.Duration)
	svc := services.New(store, mediaStore, tokens, services.Pagination{
		DefaultLimit: r.config.Pagination.DefaultLimit,
		MaxLimit:     r.config.Pagination.MaxLimit,
	}, r.logger)
	return svc, tokens
}

func closeStore(store database.Store, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Warn("failed to close database", "err", err)
	}
}

// Migrate creates the schema and exits.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store, r.logger)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	r.logger.Info("migrations applied", "driver", r.config.Database.Driver)
	return nil
}

// Reconcile runs a single reconciler pass.
func (r *Runner) Reconcile(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store, r.logger)

	mediaStore, _, err := r.openMedia(ctx)
	if err != nil {
		return err
	}

	staleAfter := cmd.Duration("stale-after")
	if staleAfter <= 0 {
		staleAfter = r.config.Reconcile.StaleAfter.Duration
	}

	svc, _ := r.services(store, mediaStore)
	report, err := svc.Reconciler.Run(ctx, staleAfter)
	r.logger.Info("reconcile finished", "scanned", report.Scanned, "resolved", report.Resolved, "failed", report.Failed)
	return err
}

// Serve runs the HTTP server and the background reconciler until ctx is
// cancelled, then shuts down within the configured timeout.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store, r.logger)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	mediaStore, mediaRoot, err := r.openMedia(ctx)
	if err != nil {
		return err
	}

	svc, tokens := r.services(store, mediaStore)

	var limiter *middleware.IPRateLimiter
	if r.config.Server.RateRPS > 0 {
		limiter = middleware.NewIPRateLimiter(r.config.Server.RateRPS, r.config.Server.RateBurst)
	}

	router := routes.SetupRoutes(routes.Deps{
		Config:    r.config,
		Store:     store,
		Services:  svc,
		Tokens:    tokens,
		Limiter:   limiter,
		Logger:    utils.WithComponent(r.logger, "http"),
		MediaRoot: mediaRoot,
	})

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()
	go svc.Reconciler.Start(bgCtx, r.config.Reconcile.Interval.Duration, r.config.Reconcile.StaleAfter.Duration)
	if limiter != nil {
		go sweepLimiter(bgCtx, limiter)
	}

	srv := &http.Server{
		Addr:              r.config.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		r.logger.Info("server starting", "addr", srv.Addr, "mode", r.config.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("server is shutting down")
	cancelBg()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	r.logger.Info("server stopped gracefully")
	return nil
}

func sweepLimiter(ctx context.Context, limiter *middleware.IPRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
