package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wbscout/wbscout/config"
	"github.com/wbscout/wbscout/internal/delivery/console"
	"github.com/wbscout/wbscout/internal/domain"
	"github.com/wbscout/wbscout/internal/infrastructure/output"
	"github.com/wbscout/wbscout/internal/infrastructure/page"
	"github.com/wbscout/wbscout/internal/infrastructure/wildberries"
	"github.com/wbscout/wbscout/internal/usecase"
)

var (
	cfg    *config.Config
	logger zerolog.Logger

	logLevel   string
	limit      int
	outputPath string
	delay      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "wbscout",
	Short: "Search Wildberries and save the results as an HTML page",
	Long: `wbscout queries the Wildberries catalog search and renders the results
into a static HTML page.

Modes:
  wbscout         Interactive prompt, writes each result page to disk (default)
  wbscout serve   HTTP preview server rendering pages on request`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "",
		"Log level: trace, debug, info, warn, error (overrides WBSCOUT_LOG_LEVEL)")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0,
		"Number of products to request per query (1-100)")
	rootCmd.PersistentFlags().DurationVar(&delay, "delay", 0,
		"Minimum pause between searches")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"File the results page is written to")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig loads configuration, applies flag overrides and sets up logging
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("limit") {
		loaded.Search.Limit = limit
	}
	if flags.Changed("delay") {
		loaded.Session.Delay = delay
	}
	if flags.Changed("output") {
		loaded.Output.Path = outputPath
	}

	level, err := zerolog.ParseLevel(loaded.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", loaded.Log.Level, err)
	}
	if loaded.Search.Limit < 1 || loaded.Search.Limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100, got: %d", loaded.Search.Limit)
	}

	cfg = loaded
	logger = newLogger(os.Stdout, level, cfg.Server.Environment == "production")
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

// newLogger builds the process logger. Outside production it writes
// human-readable lines, since stdout is shared with the interactive prompt.
func newLogger(out io.Writer, level zerolog.Level, jsonOutput bool) zerolog.Logger {
	if !jsonOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// newSearchService wires the search pipeline from configuration
func newSearchService(cfg *config.Config, writer domain.PageWriter) *usecase.SearchService {
	client := wildberries.NewClient(wildberries.ClientConfig{
		BaseURL:      cfg.Search.BaseURL,
		Timeout:      cfg.Search.Timeout,
		MaxBodyBytes: cfg.Search.MaxBodyBytes,
		ResultSet:    cfg.Search.ResultSet,
		Sort:         cfg.Search.Sort,
		Page:         cfg.Search.Page,
		AppType:      cfg.Search.AppType,
		Currency:     cfg.Search.Currency,
		Dest:         cfg.Search.Dest,
		Headers:      cfg.Search.Headers,
	})

	renderer := page.NewRenderer(page.RendererConfig{
		StylesheetURL:  cfg.Render.StylesheetURL,
		ImageBaseURL:   cfg.Render.ImageBaseURL,
		ProductBaseURL: cfg.Render.ProductBaseURL,
	})

	return usecase.NewSearchService(client, renderer, writer, usecase.SearchServiceConfig{
		Limit: cfg.Search.Limit,
		Delay: cfg.Session.Delay,
	})
}

// runInteractive runs the prompt loop until quit, end of input or interrupt
func runInteractive(cmd *cobra.Command, args []string) error {
	logger.Debug().
		Str("endpoint", cfg.Search.BaseURL).
		Int("limit", cfg.Search.Limit).
		Dur("delay", cfg.Session.Delay).
		Str("output", cfg.Output.Path).
		Msg("Starting interactive session")

	service := newSearchService(cfg, output.NewFileWriter(cfg.Output.Path))
	session := console.NewSession(service, cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Session.ExitKeyword)

	return session.Run(cmd.Context())
}
