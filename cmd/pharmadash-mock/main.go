package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmadash/pharmadash/internal/mockapi"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/logger"
)

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("pharmadash-mock", cfg.Environment)
	log.Info().Msg("starting mock inventory server")

	server := mockapi.NewServer(&cfg.Mock, log)

	srv := &http.Server{
		Addr:         cfg.Mock.Addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Mock.ReadTimeout,
		WriteTimeout: cfg.Mock.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Mock.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
