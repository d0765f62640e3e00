package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/people-notebook/internal/notify"
	"gitlab.com/dirk.krummacker/people-notebook/internal/reminder"
	"gitlab.com/dirk.krummacker/people-notebook/internal/service"
	"gitlab.com/dirk.krummacker/people-notebook/internal/store"
	"gitlab.com/dirk.krummacker/people-notebook/internal/uploads"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database, serve HTTP and send birthday reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

// serve runs until SIGINT or SIGTERM. Shutdown stops the reminder scheduler and drains the
// HTTP server.
func serve(ctx context.Context) error {
	cfg, log, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	if version, err := st.Version(); err == nil {
		log.Info("database ready", zap.String("driver", cfg.DBDriver), zap.Uint("schema_version", version))
	}

	up, err := uploads.New(cfg.UploadDir)
	if err != nil {
		return err
	}
	svc, err := service.New(st, up, log, loc)
	if err != nil {
		return err
	}
	router := svc.SetupHttpRouter(cfg.RequestLogging())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if sender, ok := notify.FromConfig(cfg); ok {
		scheduler := reminder.New(st, sender, reminder.Config{
			Interval:   cfg.ReminderInterval,
			StartDelay: cfg.ReminderStartDelay,
			Location:   loc,
		}, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = scheduler.Run(ctx)
		}()
	} else {
		log.Info("telegram reminders disabled: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
