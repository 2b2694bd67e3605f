package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-login-portal/internal/adapter"
	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/handler"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/server"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/workers"
	"github.com/MKhiriev/go-login-portal/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := newBuildInfo()
	printBuildInfo(buildInfo)

	log := logger.NewLogger("login-portal-server")
	log.Info().Stringer("build", buildInfo).Msg("starting login portal")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Str("address", cfg.Server.HTTPAddress).Str("db_driver", cfg.Storage.DB.Driver).
		Str("avatars_backend", cfg.Storage.Avatars.Backend).Msg("received configs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	challenges := captcha.NewChallengeStore(cfg.Security.Captcha.ChallengeTTL, cfg.Security.Captcha.MaxChallenges)

	var captchaAdapter adapter.CaptchaAdapter
	if cfg.Security.Captcha.TurnstileActive() {
		captchaAdapter, err = adapter.NewTurnstileAdapter(cfg.Security.Captcha, log)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating turnstile adapter")
		}
	}
	verifier := captcha.NewVerifier(cfg.Security.Captcha, challenges, captchaAdapter, log)

	services, err := service.NewServices(storages, verifier, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, verifier, storages.AvatarStorage, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	background := workers.NewWorkers(
		workers.NewSweepWorker("captcha-challenges", challenges, cfg.Workers.SweepInterval, log),
	)
	if limiter := handlers.HTTP.Limiter(); limiter != nil {
		background.Add(workers.NewSweepWorker("login-rate-limiter", limiter, cfg.Workers.SweepInterval, log))
	}

	workersDone := make(chan struct{})
	go func() {
		background.Run(ctx)
		close(workersDone)
	}()

	srv.RunServer()

	cancel()
	<-workersDone
}

func newBuildInfo() models.AppBuildInfo {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	return models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
