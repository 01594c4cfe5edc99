package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/adapter/repo"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/http/handlers"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/http/httpapi"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra/geoip"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/middleware"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/providers/veo"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/storage"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/videogen"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	jobs := repo.NewJobRepository(runner)
	ledger := repo.NewCreditLedger(runner)

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	veoClient, err := veo.NewClient(veo.Options{
		APIKey:     cfg.VeoAPIKey,
		BaseURL:    cfg.VeoBaseURL,
		ImageModel: cfg.VeoImageModel,
		TextModel:  cfg.VeoTextModel,
		HTTPClient: &http.Client{Timeout: cfg.SubmitTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize veo client")
	}

	supervisor := videogen.NewSupervisor(logger)
	orchestrator := videogen.NewOrchestrator(videogen.Options{
		Jobs:         jobs,
		Ledger:       ledger,
		Composer:     videogen.NewComposer(logger),
		Gateway:      videogen.NewSubmissionGateway(veoClient),
		Poller:       videogen.NewPoller(veoClient, cfg.PollInterval, cfg.PollMaxAttempts, logger),
		Materializer: videogen.NewMaterializer(veoClient, store, cfg.DownloadTimeout, logger),
		Compensator:  videogen.NewCompensator(jobs, ledger, logger),
		Supervisor:   supervisor,
		Logger:       logger,
	})

	var countryLookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := &handlers.App{
		Videos: orchestrator,
		Jobs:   jobs,
		Ledger: ledger,
		Logger: logger,
	}
	router := httpapi.NewRouter(httpapi.Options{
		App:           app,
		Logger:        logger,
		JWTSecret:     cfg.JWTSecret,
		CORSOrigins:   cfg.AllowedOrigins,
		DefaultLocale: cfg.DefaultLocale,
		CountryLookup: countryLookup,
		RateLimit:     cfg.RateLimitPerMin,
		StaticDir:     store.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// Give in-flight generations a chance to finish before cutting them off.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelDrain()
	if err := supervisor.Wait(drainCtx); err != nil {
		logger.Warn().Err(err).Msg("background jobs still running, cancelling")
	}
	supervisor.Cancel()

	logger.Info().Msg("server stopped")
}
