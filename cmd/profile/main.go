package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authservice "github.com/driftchat/backend/internal/auth/service"
	"github.com/driftchat/backend/internal/common/clock"
	"github.com/driftchat/backend/internal/common/config"
	"github.com/driftchat/backend/internal/common/constants"
	commoncrypto "github.com/driftchat/backend/internal/common/crypto"
	"github.com/driftchat/backend/internal/common/db"
	commonhttp "github.com/driftchat/backend/internal/common/http"
	"github.com/driftchat/backend/internal/common/jwtverify"
	"github.com/driftchat/backend/internal/common/logger"
	srv "github.com/driftchat/backend/internal/common/server"
	"github.com/driftchat/backend/internal/events"
	wsevents "github.com/driftchat/backend/internal/events/websocket"
	profilehttp "github.com/driftchat/backend/internal/profile/http"
	profileservice "github.com/driftchat/backend/internal/profile/service"
	snapshothttp "github.com/driftchat/backend/internal/snapshot/http"
	snapshotrepo "github.com/driftchat/backend/internal/snapshot/repository"
	userrepo "github.com/driftchat/backend/internal/user/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "profile", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadProfileConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	userRepo := userrepo.NewPgRepository(pool)
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()

	verifier := authservice.NewVerifier(userRepo, hasher, log)

	requestValidator, err := profileservice.NewRequestValidator(cfg.UsernameRegexp())
	if err != nil {
		log.Fatalf("failed to build request validator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := wsevents.NewHub(log, constants.WebSocketSendTimeout)
	go hub.Run(ctx)

	dispatcher := events.NewDispatcher(hub, constants.NotifierQueueSize, constants.WebSocketSendTimeout, log)

	profileService := profileservice.NewService(userRepo, verifier, requestValidator, dispatcher, log)

	snapshotStore := snapshotrepo.NewStore(cfg.SnapshotBackend, pool, log)
	log.Infof("snapshot store backend: %s", cfg.SnapshotBackend)

	authMiddleware := jwtverify.Middleware(cfg.JWTSecret, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/profile/", authMiddleware(profilehttp.NewHandler(profileService, cfg.RequestTimeout, log)))
	mux.Handle("/api/moderation/", authMiddleware(snapshothttp.NewHandler(snapshotStore, idGenerator, clk, cfg.RequestTimeout, log)))
	mux.Handle("/ws", authMiddleware(wsevents.ServeWS(hub, log)))

	rateLimiter := commonhttp.NewProfileRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler("profile", log, mux)
	finalHandler := rateLimiter.Middleware()(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("profile service: flushing event dispatcher")
			return dispatcher.Stop(ctx)
		},
		func(ctx context.Context) error {
			log.Infof("profile service: stopping websocket hub")
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "profile", shutdownHooks)
}
