package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/autorental/config"
	"github.com/Domenick1991/autorental/internal/cache"
	"github.com/Domenick1991/autorental/internal/email"
	"github.com/Domenick1991/autorental/internal/kafka"
	"github.com/Domenick1991/autorental/internal/logger"
	"github.com/Domenick1991/autorental/internal/paymentcore"
	"github.com/Domenick1991/autorental/internal/pricing"
	"github.com/Domenick1991/autorental/internal/repository"
	"github.com/Domenick1991/autorental/internal/service/booking"
	"github.com/Domenick1991/autorental/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.NotificationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				zlog.Warn("decode notification event", zap.Error(err))
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			zlog.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepSeconds) * time.Second)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			count, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				zlog.Error("expiration sweep failed", zap.Error(err))
				continue
			}
			if count > 0 {
				zlog.Info("expired pending bookings", zap.Int("count", count))
			}
		case s := <-sig:
			zlog.Info("shutting down", zap.String("signal", s.String()))
			return
		}
	}
}
