package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/pagedigest/webpage-digest/internal/browser"
	"github.com/pagedigest/webpage-digest/internal/config"
	digestio "github.com/pagedigest/webpage-digest/internal/io"
	"github.com/pagedigest/webpage-digest/internal/pipeline"
	"github.com/pagedigest/webpage-digest/internal/report"
	"github.com/pagedigest/webpage-digest/internal/thumbnail"
)

// options carries the parsed command line. explicit records which flags
// were actually passed, so an explicit value equal to a default still
// overrides the config file.
type options struct {
	configFile string
	inputFile  string
	outputFile string
	headless   bool
	explicit   map[string]bool
}

func main() {
	opts := options{explicit: map[string]bool{}}
	flag.StringVar(&opts.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&opts.inputFile, "input", config.DefaultInputFile, "File containing URLs to visit (one per line)")
	flag.StringVar(&opts.outputFile, "output", config.DefaultOutputFile, "File to write the PDF report to")
	flag.BoolVar(&opts.headless, "headless", true, "Run the browser headless")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) { opts.explicit[f.Name] = true })

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(opts, logger); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// applyFlagOverrides lets explicitly passed flags win over the config
// file. Flags left at their defaults do not touch the loaded values.
func applyFlagOverrides(appConfig *config.AppConfig, opts options) {
	if opts.explicit["input"] {
		appConfig.IO.InputFile = opts.inputFile
	}
	if opts.explicit["output"] {
		appConfig.IO.OutputFile = opts.outputFile
	}
	if opts.explicit["headless"] {
		appConfig.Browser.Headless = opts.headless
	}
}

func run(opts options, logger *slog.Logger) error {
	// Load configuration
	var appConfig *config.AppConfig
	if opts.configFile != "" {
		var err error
		appConfig, err = config.Load(opts.configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		fmt.Printf("Loaded configuration from %s\n", opts.configFile)
	} else {
		appConfig = config.CreateDefault(opts.inputFile, opts.outputFile)
	}

	applyFlagOverrides(appConfig, opts)

	// Load the URL list
	urlReader := digestio.NewURLReader(&appConfig.IO)
	urls, err := urlReader.Load()
	if err != nil {
		return fmt.Errorf("reading URLs: %w", err)
	}
	if len(urls) == 0 {
		fmt.Println("No valid data: input file contains no URLs")
		return nil
	}
	fmt.Printf("Read %d URLs from %s\n", len(urls), appConfig.IO.InputFile)

	// One browser session for the whole run. A session that cannot
	// start is the only error that aborts everything.
	session, err := browser.NewSession(&appConfig.Browser)
	if err != nil {
		return fmt.Errorf("starting browser session: %w", err)
	}
	defer session.Close()

	thumbs := thumbnail.New(&appConfig.Thumbnail, &appConfig.Proxies)
	writer := report.NewWriter(&appConfig.IO, &appConfig.Report, thumbs)
	pipe := pipeline.New(appConfig, session, writer, logger)

	count, err := pipe.Run(context.Background(), urls)
	if err != nil {
		return err
	}

	if count == 0 {
		fmt.Println("No valid data was extracted; report not generated")
		return nil
	}
	fmt.Printf("Processed %d of %d URLs. Report saved to %s\n", count, len(urls), appConfig.IO.OutputFile)
	return nil
}
