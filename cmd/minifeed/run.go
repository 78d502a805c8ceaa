package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/minifeed/internal/config"
	"github.com/abelbrown/minifeed/internal/coord"
	"github.com/abelbrown/minifeed/internal/fetch"
	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/otel"
	"github.com/abelbrown/minifeed/internal/route"
	"github.com/abelbrown/minifeed/internal/session"
	"github.com/abelbrown/minifeed/internal/ui"
)

var startRoute string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the terminal client (default)",
	RunE:  runTUI,
}

func init() {
	runCmd.Flags().StringVar(&startRoute, "route", "", "Start route, e.g. #/feed/<id>")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := logging.Init(cfg.LogDir(), cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	events, closeEvents := openEvents()
	defer closeEvents()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	client, err := fetch.NewClient(cfg.Server.URL,
		fetch.WithTimeout(cfg.Sync.RequestTimeout),
		fetch.WithRateLimit(cfg.Sync.RateLimit.RPS, cfg.Sync.RateLimit.Burst),
		fetch.WithEvents(events),
	)
	if err != nil {
		return err
	}

	coordinator := coord.New(client, coord.Options{
		PollInterval:   cfg.Sync.PollInterval,
		RequestTimeout: cfg.Sync.RequestTimeout,
		Events:         events,
	})

	r := cfg.UI.StartRoute
	if startRoute != "" {
		r = startRoute
	}

	app := ui.NewApp(ui.AppConfig{
		Fetch: func(req session.Request) tea.Cmd {
			return coordinator.FetchCmd(ctx, req)
		},
		Title:      cfg.UI.Title,
		StartScope: route.Parse(r),
		PageSize:   cfg.Sync.PageSize,
		Events:     events,
		Ring:       ring,
	})

	events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  "main",
		Msg:   client.BaseURL(),
		Extra: map[string]any{"version": version, "route": r},
	})
	logging.Info("minifeed starting", "server", client.BaseURL(), "route", r)

	program := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	coordinator.Start(ctx, program)

	_, runErr := program.Run()
	runErr = exitError(runErr, ctx.Err())

	// Graceful shutdown
	cancel()
	coordinator.Wait()

	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main"})
	if runErr != nil {
		logging.Error("application error", "err", runErr)
		return runErr
	}
	logging.Info("minifeed exiting normally")
	return nil
}

// exitError keeps a program error unless it only reports that the parent
// context was cancelled.
func exitError(runErr, ctxErr error) error {
	if runErr == nil {
		return nil
	}
	if ctxErr != nil && errors.Is(runErr, tea.ErrProgramKilled) {
		return nil
	}
	return runErr
}

// openEvents opens the JSONL event journal. When it cannot be opened the
// events still reach the debug overlay.
func openEvents() (*otel.Logger, func()) {
	path := config.EventsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logging.Warn("event journal disabled", "err", err)
		l := otel.NewNullLogger()
		return l, l.Close
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logging.Warn("event journal disabled", "err", err)
		l := otel.NewNullLogger()
		return l, l.Close
	}
	l := otel.NewLogger(f)
	return l, func() {
		l.Close()
		f.Close()
	}
}
