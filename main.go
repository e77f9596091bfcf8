package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/camsentry/camsentry/app"
	"github.com/camsentry/camsentry/config"
	"github.com/camsentry/camsentry/domain/focus"
	"github.com/camsentry/camsentry/domain/monitor"
)

func main() {
	var (
		cfgPath     = flag.String("config", "camsentry.json", "path to the JSON config file")
		target      = flag.String("target", "", "substring of the window title that must hold focus")
		keys        = flag.String("keys", "", "comma-separated recovery key combination, e.g. ctrl,5")
		region      = flag.String("region", "", "monitored region as left,top,WxH, e.g. 100,50,640x360")
		detectorURL = flag.String("detector", "", "base URL of the person-detection service")
		listWindows = flag.Bool("list-windows", false, "print visible window titles and exit")
		debugMode   = flag.Bool("debug", false, "enable debug logging and runtime stats")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s: %v\n", *cfgPath, err)
		os.Exit(1)
	}
	if *target != "" {
		cfg.TargetApp = *target
	}
	if *keys != "" {
		cfg.MacroKeys = splitKeys(*keys)
	}
	if *region != "" {
		r, err := parseRegion(*region)
		if err != nil {
			fmt.Fprintf(os.Stderr, "region: %v\n", err)
			os.Exit(1)
		}
		cfg.SetRegion(r)
	}
	if *detectorURL != "" {
		cfg.DetectorURL = *detectorURL
	}
	if *debugMode {
		cfg.Debug = true
	}
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(os.Stdout, level)

	if *listWindows {
		titles, err := focus.ListTitles(logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list windows: %v\n", err)
			os.Exit(1)
		}
		for _, t := range titles {
			fmt.Println(t)
		}
		return
	}

	if !cfg.Region().Valid() {
		fmt.Fprintln(os.Stderr, "no monitored region configured; pass -region left,top,WxH or set it in the config file")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	if err := application.Run(ctx); err != nil {
		logger.Error("session failed", "error", err)
		os.Exit(1)
	}
}

func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// parseRegion reads "left,top,WxH" into a monitor.Region.
func parseRegion(s string) (monitor.Region, error) {
	var r monitor.Region
	n, err := fmt.Sscanf(s, "%d,%d,%dx%d", &r.Left, &r.Top, &r.Width, &r.Height)
	if err != nil || n != 4 {
		return monitor.Region{}, fmt.Errorf("expected left,top,WxH, got %q", s)
	}
	if !r.Valid() {
		return monitor.Region{}, fmt.Errorf("region %q has a non-positive size", s)
	}
	return r, nil
}
