package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handiism/imagegrid/internal/config"
	"github.com/handiism/imagegrid/internal/download"
	"github.com/handiism/imagegrid/internal/http"
	ioutils "github.com/handiism/imagegrid/internal/io"
	"github.com/handiism/imagegrid/internal/log"
	"github.com/handiism/imagegrid/internal/model"
	"github.com/handiism/imagegrid/internal/notify"
	"github.com/handiism/imagegrid/internal/store"
	"github.com/handiism/imagegrid/internal/telemetry"
	"github.com/joho/godotenv"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitInvalidURL = 2
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code. Every deferred
// cleanup, including the span flush, has run by the time it returns.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("imagegrid", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Command line flags
	var (
		countFlag   = fs.Int("count", 0, "Number of images to fetch (overrides config)")
		urlFlag     = fs.String("url", "", "Image endpoint (overrides config)")
		configFlag  = fs.String("config", "", "Path to config file")
		verboseFlag = fs.Bool("verbose", false, "Print every settled image")
		outFlag     = fs.String("out", "", "Directory to export the decoded images to as PNG")
		prefixFlag  = fs.String("prefix", "image", "File name prefix for exported images")
	)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitFailure
	}

	// Apply flags
	if *countFlag != 0 {
		settings.InitialImageCount = *countFlag
	}
	if *urlFlag != "" {
		settings.ImageURL = *urlFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid settings: %v\n", err)
		return exitFailure
	}

	logger, closeLog, err := log.Open(settings.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Logging disabled: %v\n", err)
		logger, closeLog = log.Discard(), func() error { return nil }
	}
	defer closeLog()

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.Tracing.Enabled {
		opts := telemetry.Options{Service: "imagegrid"}
		if settings.Tracing.Stdout {
			opts.Spans = stdout
		}
		shutdown, err := telemetry.Setup(ctx, opts)
		if err != nil {
			fmt.Fprintf(stderr, "Tracing disabled: %v\n", err)
		} else {
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

	images := store.New()
	manager := download.NewManager(images, service, notifier,
		download.WithMaxConcurrent(settings.MaxConcurrentDownloads),
		download.WithLogger(logger),
	)

	// Deliveries are serial, so printed needs no lock.
	printed := 0
	unsubscribe := notifier.Subscribe(func(notify.Signal) {
		snap := manager.Snapshot()
		if *verboseFlag {
			for i := printed; i < len(snap); i++ {
				printRecord(stdout, i+1, snap[i])
			}
		}
		printed = len(snap)
		fmt.Fprintf(stdout, "\r%d/%d settled, %d pending", len(snap), settings.InitialImageCount, manager.Pending())
	}, notify.SignalItemAdded)
	defer unsubscribe()

	fmt.Fprintln(stdout, "imagegrid")
	fmt.Fprintf(stdout, "Fetching %d images from %s\n\n", settings.InitialImageCount, settings.ImageURL)

	var batchErr error
	batch, err := manager.DownloadImages(ctx, settings.InitialImageCount, func(err error) {
		batchErr = err
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error starting download: %v\n", err)
		return exitFailure
	}

	select {
	case <-batch.Done():
	case <-ctx.Done():
		stop()
		fmt.Fprintln(stdout, "\nInterrupted, waiting for in-flight requests...")
		<-batch.Done()
	}
	manager.Wait()

	counts := images.Counts()
	fmt.Fprintf(stdout, "\n\nDownloaded: %d | Failed: %d\n", counts[model.StatusDownloaded], counts[model.StatusFailed])

	if *outFlag != "" {
		n, err := ioutils.ExportPNG(context.Background(), *outFlag, *prefixFlag, manager.Snapshot())
		if err != nil {
			fmt.Fprintf(stderr, "Error exporting images: %v\n", err)
			return exitFailure
		}
		fmt.Fprintf(stdout, "Exported %d images to %s\n", n, *outFlag)
	}

	if batchErr != nil {
		fmt.Fprintf(stderr, "First error: %s (%v)\n", http.Describe(batchErr), batchErr)
		if errors.Is(batchErr, http.ErrInvalidURL) {
			return exitInvalidURL
		}
		return exitFailure
	}
	return exitOK
}

func printRecord(w io.Writer, n int, rec model.ImageRecord) {
	switch rec.Status {
	case model.StatusFailed:
		fmt.Fprintf(w, "\r#%d failed: %s\n", n, http.Describe(rec.Err))
	default:
		fmt.Fprintf(w, "\r#%d %s, %d bytes in %s\n", n, rec.Format, rec.Size, rec.Elapsed().Round(time.Millisecond))
	}
}
