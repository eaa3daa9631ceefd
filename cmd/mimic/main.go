package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/mimic/pkg/config"
	"github.com/dd0wney/mimic/pkg/logging"
	"github.com/dd0wney/mimic/pkg/metrics"
	"github.com/dd0wney/mimic/pkg/phase"
	"github.com/dd0wney/mimic/pkg/simulation"
	"github.com/dd0wney/mimic/pkg/tui"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	seed := flag.Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	nodes := flag.Int("nodes", 0, "Nodes in the generated topology")
	target := flag.String("target", "", "Target system name")
	headless := flag.Bool("headless", false, "Run all phases back to back and print the operation log")
	speed := flag.Float64("speed", 0, "Pacing multiplier (2 runs twice as fast)")
	logFile := flag.String("log-file", "", "Write structured logs to this file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "nodes":
			cfg.Nodes = *nodes
		case "target":
			cfg.Target = *target
		case "headless":
			cfg.Headless = *headless
		case "speed":
			cfg.Speed = *speed
		case "log-file":
			cfg.Log.File = *logFile
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	logger, closer, err := logging.Open(cfg.Log.File, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closer.Close()

	ctrl := phase.NewController(phase.Options{
		Nodes:   cfg.Nodes,
		Bounds:  cfg.Bounds(),
		Params:  cfg.Params(),
		Seed:    cfg.Seed,
		Targets: cfg.Targets,
		Pacer:   simulation.RealPacer{},
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
	})

	if cfg.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runHeadless(ctx, ctrl, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "mimic: %v\n", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(tui.New(ctrl, cfg.Bounds()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
