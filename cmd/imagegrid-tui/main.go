package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/handiism/imagegrid/internal/config"
	"github.com/handiism/imagegrid/internal/download"
	"github.com/handiism/imagegrid/internal/http"
	ioutils "github.com/handiism/imagegrid/internal/io"
	"github.com/handiism/imagegrid/internal/log"
	"github.com/handiism/imagegrid/internal/notify"
	"github.com/handiism/imagegrid/internal/store"
	"github.com/handiism/imagegrid/internal/telemetry"
	"github.com/handiism/imagegrid/internal/tui"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	// The terminal belongs to the UI, so logs only ever go to the file.
	logger, closeLog, err := log.Open(settings.Logging)
	if err != nil {
		logger, closeLog = log.Discard(), func() error { return nil }
	}
	defer closeLog()

	// Span export to stdout would draw over the grid.
	if settings.Tracing.Enabled {
		shutdown, err := telemetry.Setup(context.Background(), telemetry.Options{Service: "imagegrid-tui"})
		if err == nil {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	client := http.NewClient(
		http.WithTimeout(settings.RequestTimeout),
		http.WithUserAgent(settings.UserAgent),
		http.WithLogger(logger),
	)
	service := ioutils.NewImageService(client, settings.ImageURL, logger)

	notifier := notify.NewNotifier(logger)
	defer notifier.Close()

	manager := download.NewManager(store.New(), service, notifier,
		download.WithMaxConcurrent(settings.MaxConcurrentDownloads),
		download.WithLogger(logger),
	)

	if err := tui.Run(tui.NewModel(manager, notifier, settings)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
