package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/coordex/internal/auth"
	"github.com/ternarybob/coordex/internal/common"
	"github.com/ternarybob/coordex/internal/coordinate"
	"github.com/ternarybob/coordex/internal/export"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: coordex [flags] <team-id> [output-file]\n\n")
	fmt.Fprintf(os.Stderr, "Exports all job data for a Coordinate team to a CSV file.\n")
	fmt.Fprintf(os.Stderr, "When output-file is omitted, CSV data is written to stdout.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Handle version flag
	if *showVersion || *showVersionV {
		fmt.Printf("Coordex version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}
	teamID := flag.Arg(0)
	outPath := flag.Arg(1)
	toStdout := outPath == ""

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("coordex.toml"); err == nil {
			configFiles = append(configFiles, "coordex.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// Stdout carries the CSV stream when no output file is given; drop the
	// console writer so diagnostics cannot corrupt the data.
	if toStdout {
		config.Logging.Output = withoutConsoleOutput(config.Logging.Output)
	}

	logger = common.InitLogger(config)

	if !toStdout {
		common.PrintBanner(common.GetVersion())
	}

	runID := common.NewRunID()
	logger.Info().
		Str("run_id", runID).
		Str("team_id", teamID).
		Strs("config_files", configFiles).
		Msg("Starting export")

	ctx := context.Background()

	authService := auth.NewService(
		config.Auth.Scope,
		config.Auth.ClientSecrets,
		config.Auth.CredentialsFile,
		auth.WithLogger(logger),
	)

	httpClient, err := authService.Client(ctx)
	if err != nil {
		var configErr *auth.ConfigError
		if errors.As(err, &configErr) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s\n", configErr, configErr.Help)
		}
		logger.Fatal().Str("run_id", runID).Err(err).Msg("Authorization failed")
		os.Exit(1)
	}

	client := coordinate.NewClient(httpClient,
		coordinate.WithBaseURL(config.API.BaseURL),
		coordinate.WithRateLimit(config.API.RateLimit),
		coordinate.WithPageSize(config.API.PageSize),
		coordinate.WithTimeout(config.API.RequestTimeout()),
		coordinate.WithLogger(logger),
	)

	out := os.Stdout
	destName := "stdout"
	if !toStdout {
		out, err = os.Create(outPath)
		if err != nil {
			logger.Fatal().Str("run_id", runID).Str("path", outPath).Err(err).Msg("Failed to open output file")
			os.Exit(1)
		}
		destName = outPath
	}

	exporter := export.New(client,
		export.WithLogger(logger),
		export.WithProgress(func() { fmt.Fprint(os.Stderr, ".") }),
		export.WithProgressInterval(config.Export.ProgressInterval),
	)

	fmt.Fprint(os.Stderr, "Working...")
	count, exportErr := exporter.Export(ctx, teamID, out)
	fmt.Fprintln(os.Stderr)

	// Close the sink on success and failure alike so nothing buffered is lost.
	if !toStdout {
		if err := out.Close(); err != nil && exportErr == nil {
			exportErr = err
		}
	}

	if exportErr != nil {
		logger.Fatal().Str("run_id", runID).Err(exportErr).Msg("Export failed")
		os.Exit(1)
	}

	plural := "s"
	if count == 1 {
		plural = ""
	}
	fmt.Fprintf(os.Stderr, "%d job%s written to %s.\n", count, plural, destName)
}

// withoutConsoleOutput strips console log destinations, keeping file output.
func withoutConsoleOutput(outputs []string) []string {
	kept := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if o == "stderr" || o == "stdout" || o == "console" {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}
