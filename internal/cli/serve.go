package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/logging"
	"github.com/lazypower/reminderparrot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and the forgetting sweep",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	eng := engine.NewFromDB(db, cfg.EngineOptions(), log)
	if err := eng.StartSweepTimer(cfg.Sweep.Schedule); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer eng.Stop()

	if cfg.Parrot.DebugFastMemory {
		log.WithField("seconds", cfg.Parrot.DebugMemorySeconds).Warn("debug fast memory enabled")
	}

	srv := server.New(db, eng, log, VersionString())
	addr := cfg.ListenAddr()

	// cancelled on shutdown so open feed streams end
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     srv,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("addr", addr).WithField("db", db.Path).Info("parrot serving")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	<-done
	log.Info("shutting down")
	cancelBase()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
