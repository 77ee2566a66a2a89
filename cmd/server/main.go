package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/clubroom/clubroom/internal/adapters/http"
	wsignal "github.com/clubroom/clubroom/internal/adapters/signal"
	"github.com/clubroom/clubroom/internal/app"
	"github.com/clubroom/clubroom/internal/config"
	"github.com/clubroom/clubroom/internal/core"
	"github.com/clubroom/clubroom/internal/resolver"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	roomCfg := core.DefaultConfig()
	roomCfg.HeartbeatInterval = cfg.HeartbeatInterval
	roomCfg.AmbientCheckInterval = cfg.AmbientCheckInterval
	roomCfg.AmbientVideoID = cfg.AmbientVideoID
	roomCfg.ChatHistoryLimit = cfg.ChatHistoryLimit
	roomCfg.MoveMaxSpeedPxPerSec = cfg.MoveMaxSpeed
	roomCfg.MoveSlackPx = cfg.MoveSlack
	roomCfg.MoveMinInterval = cfg.MoveMinInterval

	res := resolver.New(cfg.ResolverBaseURL, cfg.ResolverTimeout)
	policy := app.SlowConsumerPolicy{KickAfter: roomCfg.BackpressureKickAfter}
	manager := app.NewRoomManager(roomCfg, clockwork.NewRealClock(), policy, res)
	registry := app.NewRegistry()

	if _, err := manager.EnsurePublicRoom(cfg.PublicRoomName, cfg.PublicRoomDesc); err != nil {
		log.Error().Err(err).Msg("failed to bootstrap public room")
	}

	ctl := wsignal.NewController(manager, registry, cfg.ReadLimit)

	r := router.SetupRouter(cfg, manager, ctl, res)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Club server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	manager.StopAll()
	log.Info().Msg("Server exited gracefully")
}
