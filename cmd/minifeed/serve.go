package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/otel"
	"github.com/abelbrown/minifeed/internal/server"
	"github.com/abelbrown/minifeed/internal/store"
)

var (
	serveSeed string
	serveAddr string
	serveDrip time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference feed server over an in-memory store",
	Long: "serve loads groups, feeds and items from a YAML seed file into an in-memory\n" +
		"SQLite store and serves them on /api/getGroups, /api/getFeeds and /api/getItems.\n" +
		"Nothing is written to disk.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "YAML seed file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Listen address")
	serveCmd.Flags().DurationVar(&serveDrip, "drip", 0, "Release one held-back seed item per interval (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logging.InitWriter(os.Stderr, cfg.Logging.Level)
	defer logging.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, closeEvents := openEvents()
	defer closeEvents()

	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var held []model.Item
	if serveSeed != "" {
		seed, err := store.LoadSeedFile(serveSeed)
		if err != nil {
			return err
		}
		held, err = seed.Populate(ctx, st, time.Now())
		if err != nil {
			return err
		}
		n, _ := st.Count(ctx)
		logging.Info("seed loaded", "file", serveSeed, "groups", len(seed.Groups), "items", n, "held", len(held))
	} else {
		logging.Warn("no seed file, serving an empty store")
	}

	srv := server.New(st, events)
	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if serveDrip > 0 && len(held) > 0 {
		go srv.Drip(ctx, held, serveDrip, time.Now)
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", serveAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "server", Msg: serveAddr})

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("shutdown", "err", err)
	}
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "server"})
	logging.Info("server stopped")
	return nil
}
