package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fjcero/ClearGDPR/internal/api/http/router"
	httpServer "github.com/fjcero/ClearGDPR/internal/api/http/server"
	"github.com/fjcero/ClearGDPR/internal/config"
	"github.com/fjcero/ClearGDPR/internal/crypto"
	"github.com/fjcero/ClearGDPR/internal/ledger"
	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/metrics"
	"github.com/fjcero/ClearGDPR/internal/model"
	"github.com/fjcero/ClearGDPR/internal/repository/postgres"
	"github.com/fjcero/ClearGDPR/internal/server"
	"github.com/fjcero/ClearGDPR/internal/service"
	storage "github.com/fjcero/ClearGDPR/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	subjectRepo := postgres.NewSubjectRepository(db)
	keyRepo := postgres.NewKeyRepository(db)
	processorRepo := postgres.NewProcessorRepository(db)
	eventRepo := postgres.NewErasureEventRepository(db)
	txManager := postgres.NewTxManager(db)

	registry := prometheus.NewRegistry()
	vaultMetrics := metrics.New(registry)

	ageCipher := crypto.NewAgeCipher()

	erasureLedger, err := ledger.New(cfg.Ledger, logger)
	if err != nil {
		logger.Fatal("failed to initialize erasure ledger", "error", err)
	}
	if closer, ok := erasureLedger.(io.Closer); ok {
		defer closer.Close()
	}

	var evidence model.EvidenceStore
	if cfg.Storage.Enabled {
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to create minio client", "error", err)
		}
		evidenceClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			logger.Fatal("failed to initialize evidence archive", "error", err)
		}
		evidence = evidenceClient
	}

	vaultService := service.NewVault(
		subjectRepo,
		keyRepo,
		eventRepo,
		txManager,
		ageCipher,
		ageCipher,
		erasureLedger,
		evidence,
		vaultMetrics,
		cfg.Vault.PageSize,
		logger,
	)
	processorService := service.NewProcessors(processorRepo, logger)

	if err := processorService.SyncFromJSON(ctx, cfg.Vault.Processors); err != nil {
		logger.Fatal("failed to sync processor registry", "error", err)
	}

	srv := registerHTTPServer(vaultService, processorService, db, registry, logger, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	vaultService *service.Vault,
	processorService *service.Processors,
	db router.Pinger,
	registry *prometheus.Registry,
	logger *logger.Logger,
	addr string,
) *httpServer.HTTPServer {
	r := router.New(vaultService, processorService, db, registry, logger)
	mux := r.Register()

	return httpServer.NewHTTPServer(mux, addr)
}
