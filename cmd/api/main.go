package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admissions/internal/config"
	"admissions/internal/domain/payment"
	httpx "admissions/internal/http"
	"admissions/internal/notify"
	"admissions/internal/provider/razorpay"
	appsvc "admissions/internal/services/application"
	"admissions/internal/services/audit"
	"admissions/internal/services/auth"
	bookingsvc "admissions/internal/services/booking"
	paymentsvc "admissions/internal/services/payment"
	"admissions/internal/store/postgres"
	redisstore "admissions/internal/store/redis"
	"admissions/internal/store/repositories"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.App)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init DB
	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}
	repo := postgres.NewRepo(pool)

	// Redis is optional
	rdb, err := redisstore.Open(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	var denylist repositories.TokenDenylist
	deps := httpx.RouterDependencies{Config: cfg, DB: pool}
	if rdb != nil {
		defer rdb.Close()
		denylist = redisstore.NewTokenDenylist(rdb)
		if cfg.Sec.RateLimitPerMin > 0 {
			deps.Limiter = redisstore.NewRateLimiter(rdb, cfg.Sec.RateLimitPerMin, time.Minute)
		}
	}

	// Mail
	var sender notify.Sender = notify.LogSender{}
	if cfg.MailEnabled() {
		smtp, err := notify.NewSMTPSender(cfg.Mail)
		if err != nil {
			log.Fatal().Err(err).Msg("mail sender")
		}
		sender = smtp
	} else {
		log.Warn().Msg("SMTP credentials not set: emails are logged, not sent")
	}
	dispatcher := notify.NewDispatcher(sender, notify.DispatcherConfig{
		Workers:    cfg.Mail.Workers,
		QueueSize:  cfg.Mail.QueueSize,
		MaxRetries: cfg.Mail.MaxRetries,
	})
	go dispatcher.Run(ctx)

	templates, err := notify.NewTemplates(cfg.App.Institution)
	if err != nil {
		log.Fatal().Err(err).Msg("mail templates")
	}

	// Services
	recorder := audit.NewRecorder(repo.Events)
	notifier := notify.NewPaymentNotifier(dispatcher, templates, recorder)
	applications := appsvc.NewService(repo.Applications, notifier, recorder)
	deps.Audit = recorder
	deps.Applications = applications
	deps.Payments = paymentsvc.NewService(
		razorpay.New(cfg.Gateway),
		cfg.Gateway.KeySecret,
		payment.Currency(cfg.Gateway.Currency),
		applications,
		recorder,
	)
	deps.Bookings = bookingsvc.NewService(repo.Bookings)
	deps.Auth = auth.NewService(
		repo.Users,
		auth.NewTokenIssuer(cfg.Sec.JWTSecret, cfg.Sec.TokenTTL),
		denylist,
		cfg.Sec.AdminSecretKey,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      httpx.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("Admissions API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	select {
	case <-dispatcher.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("mail dispatcher did not stop in time")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(app config.AppCfg) {
	level, err := zerolog.ParseLevel(app.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if app.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
