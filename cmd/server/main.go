package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ProjectSGH/pashumitra/internal/auth"
	"github.com/ProjectSGH/pashumitra/internal/chat"
	"github.com/ProjectSGH/pashumitra/internal/config"
	httpapi "github.com/ProjectSGH/pashumitra/internal/http"
	"github.com/ProjectSGH/pashumitra/internal/repository"
	"github.com/ProjectSGH/pashumitra/internal/service"
)

type repos struct {
	users         repository.UserRepository
	medicines     repository.MedicineRepository
	orders        repository.OrderRepository
	notifications repository.NotificationRepository
	campaigns     repository.CampaignRepository
	messages      repository.MessageRepository
	tx            repository.TxManager
	close         func()
}

func buildRepos(cfg config.Config) (*repos, error) {
	if strings.EqualFold(cfg.StoreBackend, "memory") {
		store := repository.NewMemoryStore()
		return &repos{
			users:         repository.NewMemoryUsers(store),
			medicines:     store,
			orders:        repository.NewMemoryOrders(store),
			notifications: repository.NewMemoryNotifications(store),
			campaigns:     repository.NewMemoryCampaigns(store),
			messages:      repository.NewMemoryMessages(store),
			tx:            repository.NewMemoryTx(store),
			close:         func() {},
		}, nil
	}

	db, err := repository.NewPostgres(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(cfg.MigrationDir); err != nil {
		db.Close()
		return nil, err
	}
	return &repos{
		users:         repository.NewPGUsers(db),
		medicines:     repository.NewPGMedicines(db),
		orders:        repository.NewPGOrders(db),
		notifications: repository.NewPGNotifications(db),
		campaigns:     repository.NewPGCampaigns(db),
		messages:      repository.NewPGMessages(db),
		tx:            db,
		close:         db.Close,
	}, nil
}

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Str("appName", cfg.AppName).Str("backend", cfg.StoreBackend).Msg("Application starting")

	r, err := buildRepos(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer r.close()

	notificationsSvc := service.NewNotificationService(r.notifications)
	usersSvc := service.NewUserService(r.users)
	medicinesSvc := service.NewMedicineService(r.medicines)
	ordersSvc := service.NewOrderService(r.medicines, r.orders, r.users, notificationsSvc, r.tx)
	campaignsSvc := service.NewCampaignService(r.campaigns, notificationsSvc, r.tx)
	hub := chat.NewHub(r.messages)
	authMgr := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	srv := httpapi.NewServer(httpapi.Deps{
		Users:            usersSvc,
		Medicines:        medicinesSvc,
		Orders:           ordersSvc,
		Notifications:    notificationsSvc,
		Campaigns:        campaignsSvc,
		Hub:              hub,
		Auth:             authMgr,
		ChatHistoryLimit: cfg.ChatHistoryLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go campaignsSvc.RunSweeper(ctx, cfg.CampaignSweepInterval)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Application shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
