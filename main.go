// Package main, chronora backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Logger'ı kur
//  2. Config'i yükle
//  3. Tracing ve metrikleri başlat
//  4. Repository'leri oluştur (sqlite veya mongo)
//  5. Service'leri oluştur (repository'ler + storage + email + llm ile)
//  6. Handler'ları oluştur (service'ler ile)
//  7. HTTP router'ı kur, route'ları bağla
//  8. Oturum temizleyiciyi başlat
//  9. HTTP Server'ı başlat
//  10. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
// Her adımın detayı ilgili init_*.go dosyasındadır.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/config"
	"github.com/akinalp/chronora/pkg/telemetry"
)

const serviceName = "chronora"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── 1. Config + Logger ───
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger henüz yapılandırılmadı; varsayılan JSON çıktı ile yaz
		log.Fatal().Err(err).Str("component", "main").Msg("failed to load config")
	}
	initLogger(cfg.Server)

	logger := log.With().Str("component", "main").Logger()
	logger.Info().
		Str("env", cfg.Server.Env).
		Str("db_driver", cfg.Database.Driver).
		Str("storage_driver", cfg.Upload.Driver).
		Str("email_provider", cfg.Email.Provider).
		Msg("chronora server starting")

	// ─── 2. Telemetry ───
	shutdownTracing, err := telemetry.InitTracing(ctx, serviceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracing")
		}
	}()

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	// ─── 3. Repository Layer ───
	repos, closeDB, err := initRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeDB(closeCtx); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	// ─── 4. Service Layer ───
	svcs, err := initServices(ctx, repos, cfg, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize services")
	}

	// ─── 5. Handler Layer + Router ───
	h := initHandlers(svcs, cfg)
	router := initRoutes(h, svcs, cfg, metrics, registry)

	// ─── 6. Session Sweeper ───
	svcs.Sweeper.Start()
	defer svcs.Sweeper.Stop()

	// ─── 7. HTTP Server ───
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute, // AI istekleri uzun sürebilir
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// ─── 8. Graceful Shutdown ───
	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	// HTTP server'ı kapat — yeni request kabul etmeyi durdurur,
	// mevcut request'lerin bitmesini bekler (10sn timeout).
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped gracefully")
}

// initLogger, global zerolog logger'ını ortama göre ayarlar.
// Development'ta okunabilir console çıktısı, diğer ortamlarda JSON satırları.
func initLogger(cfg config.ServerConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == config.EnvDevelopment {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// log.Ctx(ctx) context'te logger bulamazsa (ör: arka plan işleri) global logger'a düşer
	zerolog.DefaultContextLogger = &log.Logger
}
