package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"moveline/config"
	"moveline/cron"
	"moveline/database"
	"moveline/handlers"
	"moveline/middleware"
	"moveline/routes"
	"moveline/services/calendar"
	"moveline/services/conversation"
	"moveline/services/distance"
	ai "moveline/services/intelligence"
	"moveline/services/notification"
	"moveline/services/persistence"
	"moveline/services/pricing"
	"moveline/services/session"
	"moveline/services/tasks"
	"moveline/services/telephony"
	"moveline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newSessionStore(cfg config.Config, client *redis.Client) session.Store {
	if cfg.SessionStore == "redis" {
		return session.NewRedisStore(client, 2*cfg.SessionIdleTimeout)
	}
	return session.NewMemoryStore()
}

// runServe wires every collaborator and serves until ctx is cancelled.
func runServe(ctx context.Context, cfg config.Config, withWorker bool) error {
	logger := utils.GetLogger()

	var mongoClient *mongo.Client
	if cfg.PersistenceBackend == persistence.BackendMongo || cfg.PersistenceBackend == persistence.BackendBoth {
		database.InitDB()
		mongoClient = database.MongoClient
		defer database.CloseDB(context.Background())
	}
	if cfg.GoogleAPIKey == "" {
		logger.Warn("GOOGLE_API_KEY not set: callers cannot get past the address steps and will be transferred")
	}
	sessionClient := utils.GetSessionClient()
	cacheClient := utils.GetCacheClient()

	// collaborators.
	store := newSessionStore(cfg, sessionClient)
	recorder, err := persistence.NewFromConfig(ctx, cfg, cacheClient, logger)
	if err != nil {
		return fmt.Errorf("serve: persistence: %w", err)
	}
	notifier, err := notification.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("serve: notification: %w", err)
	}
	taskClient := asynq.NewClient(cron.RedisOpt(cfg))
	defer taskClient.Close()

	machine, err := conversation.New(conversation.Deps{
		Store:      store,
		Recorder:   recorder,
		Notifier:   notifier,
		Scheduler:  tasks.NewAsynqScheduler(taskClient, time.Local),
		Maps:       distance.NewGoogleClient(cfg.GoogleAPIKey, cfg.OfficeAddress),
		Calendar:   calendar.New(recorder),
		Classifier: ai.NewFromConfig(ctx, cfg, cacheClient, logger),
		Logger:     logger,
	}, conversation.SettingsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	sweeper := session.NewSweeper(store, machine, cfg.SessionIdleTimeout, logger)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		return fmt.Errorf("serve: sweeper: %w", err)
	}
	defer sweeper.Stop()

	var worker *asynq.Server
	if withWorker {
		worker = cron.InitTaskWorker(cfg, notifier, notification.CompanyFromConfig(cfg), logger)
	}

	utils.StartHealthMonitor(ctx, []*redis.Client{sessionClient, cacheClient}, mongoClient)

	// handlers.
	company := notification.CompanyFromConfig(cfg)
	twilioClient := telephony.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	dialer := telephony.NewDialer(twilioClient.Api, sessionClient, cfg, logger)
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewVoiceHandler(machine, handlers.VoiceOptionsFromConfig(cfg), company),
		handlers.NewSMSHandler(machine, recorder, notifier, company, cfg.ManagerPhone),
		handlers.NewOutboundHandler(dialer),
		handlers.NewQuoteHandler(distance.NewGoogleClient(cfg.GoogleAPIKey, cfg.OfficeAddress), pricing.PolicyFromConfig(cfg)),
		handlers.NewAdminHandler(store, dialer),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		TwilioAuthToken:   cfg.TwilioAuthToken,
		BaseURL:           cfg.BaseURL,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	})

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	logger.Info("serve: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("serve: server forced to shutdown", zap.Error(err))
	}
	// Let bookings and flushes started by the last webhooks finish.
	machine.Wait()
	if worker != nil {
		worker.Shutdown()
	}
	logger.Info("serve: server stopped gracefully")
	return nil
}
