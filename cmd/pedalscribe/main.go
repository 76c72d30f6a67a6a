// ABOUTME: Entry point for the pedal-driven dictation player
// ABOUTME: Wires config, logging, audio output, pedal scanner and the TUI
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pedalscribe/pedalscribe/internal/app"
	"github.com/pedalscribe/pedalscribe/internal/config"
	"github.com/pedalscribe/pedalscribe/internal/decode"
	"github.com/pedalscribe/pedalscribe/internal/logging"
	"github.com/pedalscribe/pedalscribe/internal/pedal"
	"github.com/pedalscribe/pedalscribe/internal/player"
	"github.com/pedalscribe/pedalscribe/internal/ui"
	"github.com/pedalscribe/pedalscribe/internal/version"
)

var (
	configPath  = flag.String("config", "", "Config file path (default: XDG config dir)")
	verbose     = flag.Bool("verbose", false, "Also log to stderr")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	log := logging.New(*verbose)

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Warn().Err(err).Msg("config load failed, using defaults")
		cfg = config.Default()
	}

	log.Info().
		Str("version", version.Version).
		Int("pedal_candidates", len(cfg.Candidates())).
		Msg("starting pedalscribe")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scanner := pedal.NewScanner(pedal.NewEnumerator(), cfg.Candidates(), log)
	go scanner.Run(ctx)

	output := player.NewOtoOutput(log)
	transport := player.NewTransport(output)

	core := app.New(app.Config{
		Config:    cfg,
		Transport: transport,
		Statuses:  scanner.Statuses(),
		Events:    scanner.Events(),
		Output:    output,
		Logger:    log,
		Loader:    decode.Load,
	})
	defer core.Close()

	// An audio file named on the command line is opened at startup;
	// failures surface as a notice inside the TUI.
	if path := flag.Arg(0); path != "" {
		_ = core.OpenFile(path)
	}

	if err := ui.Run(core); err != nil {
		log.Error().Err(err).Msg("TUI failed")
		fmt.Fprintf(os.Stderr, "pedalscribe: %v\n", err)
		os.Exit(1)
	}

	log.Info().Msg("pedalscribe stopped")
}
