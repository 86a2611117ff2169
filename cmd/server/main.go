package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chefin-server/internal/config"
	apphttp "chefin-server/internal/http"
	"chefin-server/internal/identity"
	"chefin-server/internal/repository/sqlite"
	"chefin-server/internal/service"
	"chefin-server/internal/storage"
	"chefin-server/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.AccessSecret) == "" {
		logger.Fatalf("auth access secret is required")
	}
	if strings.TrimSpace(cfg.Auth.RefreshSecret) == "" {
		logger.Fatalf("auth refresh secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}

	issuer := token.NewIssuer(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)

	var verifier identity.Verifier
	if cfg.Auth.GoogleClientID != "" {
		verifier = identity.NewGoogleVerifier(cfg.Auth.GoogleClientID)
		logger.Info("google federated login enabled")
	}

	authService := service.NewAuthService(userRepo, issuer, verifier)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo, userRepo)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		authService,
		userService,
		postService,
		storageSvc,
		cfg.Storage.Bucket,
		cfg.Storage.KeyPrefix,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildStorage sets up the S3 upload service. Uploads are optional: with no
// bucket configured the upload endpoints report storage unconfigured.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("no storage bucket configured, uploads disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Region, cfg.Storage.Endpoint), nil
}
