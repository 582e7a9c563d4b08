package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/autorental/api"
	"github.com/Domenick1991/autorental/config"
	"github.com/Domenick1991/autorental/internal/bootstrap"
	"github.com/Domenick1991/autorental/internal/cache"
	"github.com/Domenick1991/autorental/internal/kafka"
	"github.com/Domenick1991/autorental/internal/logger"
	"github.com/Domenick1991/autorental/internal/paymentcore"
	"github.com/Domenick1991/autorental/internal/pricing"
	"github.com/Domenick1991/autorental/internal/repository"
	"github.com/Domenick1991/autorental/internal/service/admin"
	"github.com/Domenick1991/autorental/internal/service/booking"
	"github.com/Domenick1991/autorental/internal/service/fleet"
	"github.com/Domenick1991/autorental/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	db := repository.NewDB(pool)
	bookingRepo := repository.NewBookingRepository(db)
	carRepo := repository.NewCarRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.AvailabilityCacheSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	pricer := pricing.NewEngine(pricing.DefaultCoupons())
	core := paymentcore.New(cfg.PaymentCore)

	paymentService := payment.NewPaymentService(
		db, bookingRepo, paymentRepo, auditRepo, core, producer,
		cfg.Kafka.NotificationsTopic, cfg.Booking.Currency, zlog,
	)
	bookingService := booking.NewBookingService(
		db, bookingRepo, carRepo, waitlistRepo, auditRepo, maintenanceRepo,
		pricer, paymentService, redisCache, producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.CarHoldTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.ExpirationMinutes)*time.Minute,
		zlog,
	)
	availabilityService := fleet.NewAvailabilityService(db, carRepo, bookingRepo, maintenanceRepo, pricer)
	reportService := admin.NewReportService(bookingRepo, carRepo)

	deps := api.RouterDeps{
		Bookings:  bookingService,
		Payments:  paymentService,
		Fleet:     availabilityService,
		Reports:   reportService,
		JWTSecret: cfg.Auth.JWTSecret,
	}

	if err := bootstrap.Run(ctx, cfg, deps, zlog); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
