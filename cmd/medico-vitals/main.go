package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"medico-vitals/internal/config"
	"medico-vitals/internal/httpapi"
	"medico-vitals/internal/logger"
	"medico-vitals/internal/mqtt"
	"medico-vitals/internal/notify"
	"medico-vitals/internal/repository"
	"medico-vitals/internal/service"
	"medico-vitals/internal/store"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		zlog.Fatal("Failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		zlog.Fatal("Failed to ping database", zap.Error(err))
	}
	zlog.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var vitalsCache *store.VitalsCache
	var alertStream *store.AlertStream
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			zlog.Warn("Redis unavailable, cache and alert stream disabled", zap.Error(err))
		} else {
			vitalsCache = store.NewVitalsCache(store.NewRedisKVStore(redisClient), zlog)
			alertStream = store.NewAlertStream(redisClient, zlog)
			zlog.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	patientsRepo := repository.NewPatientsRepository(db, zlog)
	doctorsRepo := repository.NewDoctorsRepository(db, zlog)
	vitalsRepo := repository.NewVitalReadingsRepository(db, zlog)
	alertsRepo := repository.NewHealthAlertsRepository(db, zlog)
	historyRepo := repository.NewDiseaseHistoryRepository(db, zlog)

	var dispatcher notify.Dispatcher = notify.NopDispatcher{}
	if cfg.Push.Enabled {
		dispatcher = notify.NewExpoDispatcher(cfg.Push.ExpoURL, zlog)
	}

	deviceSvc := service.NewDeviceService(db, patientsRepo, zlog)
	vitalSvc := service.NewVitalService(db, vitalsRepo, patientsRepo, alertsRepo, doctorsRepo,
		deviceSvc, dispatcher, vitalsCache, alertStream, zlog)
	diseaseSvc := service.NewDiseaseService(patientsRepo, vitalsRepo, historyRepo, zlog)
	alertSvc := service.NewAlertService(alertsRepo, patientsRepo, zlog)

	var mqttConnected func() bool
	broker, err := mqtt.NewVitalsBroker(&cfg.MQTT, vitalSvc, zlog)
	if err != nil {
		zlog.Warn("MQTT unavailable, device ingestion limited to HTTP", zap.Error(err))
	} else {
		if err := broker.Subscribe(); err != nil {
			zlog.Error("Failed to subscribe to vitals topic", zap.Error(err))
		}
		mqttConnected = broker.IsConnected
	}

	router := httpapi.NewRouter(zlog)
	vitalsHandler := httpapi.NewVitalsHandler(vitalSvc, vitalsCache, zlog)
	deviceHandler := httpapi.NewDeviceHandler(deviceSvc, zlog)
	diseaseHandler := httpapi.NewDiseaseHandler(diseaseSvc, zlog)
	alertHandler := httpapi.NewAlertHandler(alertSvc, zlog)
	reportHandler := httpapi.NewReportHandler(patientsRepo, vitalSvc, diseaseSvc, zlog)

	router.RegisterIoTRoutes(vitalsHandler, deviceHandler)
	router.RegisterDataRoutes(vitalsHandler, deviceHandler, diseaseHandler, alertHandler, reportHandler)
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(db, redisClient, mqttConnected, zlog))

	srv := service.NewServer(cfg.HTTP.Addr, router, zlog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zlog.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		zlog.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if broker != nil {
		broker.Disconnect()
	}
	_ = redisClient.Close()
	_ = db.Close()
	zlog.Info("Shutdown complete")
}
