// Package main provides the crawler's CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yohayonyon/blc/engine"
	"github.com/yohayonyon/blc/fetcher"
	"github.com/yohayonyon/blc/report"
	"github.com/yohayonyon/blc/tui"
)

// cliFlags holds parsed command-line flags.
type cliFlags struct {
	workers            int
	maxDepth           int
	rateLimit          float64
	retries            int
	retryDelay         time.Duration
	userAgent          string
	insecureTLS        bool
	nonCrawlingDomains []string
	memoryLimitMB      int64
	verbose            bool
	outputFormat       string
	outputFile         string
	noTUI              bool
	largeCrawl         bool
}

func newRootCmd() *cobra.Command {
	opts := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "blc [flags] <url>",
		Short: "Crawl a site and report broken links",
		Long: `blc crawls a website starting from a target URL, following
same-site links to a configurable depth, and reports every link that
came back broken: 404s, unresolvable hosts, and http:// links that
redirect to HTTPS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.workers, "workers", "w", engine.EngineDefaultWorkers, "number of concurrent workers (-1 = default)")
	flags.IntVarP(&opts.maxDepth, "depth", "d", engine.UnboundedDepth, "maximum crawl depth (-1 = unbounded)")
	flags.Float64Var(&opts.rateLimit, "rate-limit", 0, "max requests per second across the whole crawl (0 = unlimited)")
	flags.IntVar(&opts.retries, "retries", fetcher.DefaultRetryPolicy().MaxAttempts, "max attempts per request")
	flags.DurationVar(&opts.retryDelay, "retry-delay", fetcher.DefaultRetryPolicy().Multiplier, "base delay between retries")
	flags.StringVar(&opts.userAgent, "user-agent", "", "user agent string (default: generated)")
	flags.BoolVar(&opts.insecureTLS, "insecure-tls", false, "skip TLS certificate verification")
	flags.StringArrayVar(&opts.nonCrawlingDomains, "non-crawling-domain", nil, "host to probe for broken links but never parse for further links (repeatable)")
	flags.Int64Var(&opts.memoryLimitMB, "memory-limit-mb", 0, "soft heap limit in MB for memory-pressure logging (0 = disabled)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&opts.outputFormat, "format", "f", "", "write a structured report in this format: json, csv, html")
	flags.StringVarP(&opts.outputFile, "output", "o", "", "file to write the structured report to (default: stdout)")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "run headless, printing progress as log lines instead of the interactive TUI")
	flags.BoolVar(&opts.largeCrawl, "large-crawl", false, "use a disk-backed bloom filter for the seen-URL set instead of an in-memory map, bounding memory on very large crawls")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func buildEngineConfig(opts *cliFlags, targetURL string) engine.Config {
	nonCrawling := make(map[string]struct{}, len(opts.nonCrawlingDomains))
	for _, host := range opts.nonCrawlingDomains {
		nonCrawling[host] = struct{}{}
	}
	return engine.Config{
		TargetURL:          targetURL,
		MaxDepth:           opts.maxDepth,
		WorkersNum:         opts.workers,
		NonCrawlingDomains: nonCrawling,
		UserAgent:          opts.userAgent,
		RequestTimeout:     10 * time.Second,
		RetryPolicy: fetcher.RetryPolicy{
			MaxAttempts: opts.retries,
			Multiplier:  opts.retryDelay,
			MinWait:     opts.retryDelay,
			MaxWait:     30 * time.Second,
		},
		InsecureTLS:   opts.insecureTLS,
		RateLimit:     opts.rateLimit,
		MemoryLimitMB: opts.memoryLimitMB,
		LargeCrawl:    opts.largeCrawl,
	}
}

func runCrawl(cmd *cobra.Command, opts *cliFlags, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid URL %q: must start with http:// or https://", rawURL)
	}

	logger := setupLogger(opts.verbose)
	cfg := buildEngineConfig(opts, rawURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	var (
		res *report.Result
	)
	if opts.noTUI {
		res, err = runHeadless(ctx, cfg, logger)
	} else {
		res, err = runTUI(ctx, cancel, cfg, logger)
	}
	if err != nil {
		return err
	}

	if opts.outputFormat != "" {
		if err := writeStructuredOutput(opts, res); err != nil {
			return err
		}
	}

	// Exit code 0 regardless of how many broken links were found;
	// a nonzero exit is reserved for the errors returned above (engine
	// setup or crawl failure, structured-report write failure).
	return nil
}

func runHeadless(ctx context.Context, cfg engine.Config, logger *slog.Logger) (*report.Result, error) {
	progressCh := make(chan engine.CrawlEvent, 100)
	eng, err := engine.New(cfg, logger, progressCh)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	go func() {
		for evt := range progressCh {
			logger.Info("processed", "url", evt.URL, "status", evt.Status, "processed", evt.Processed, "discovered", evt.Discovered, "broken", evt.Broken)
		}
	}()

	res, err := eng.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}

	report.WriteText(os.Stdout, res)
	return res, nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc, cfg engine.Config, logger *slog.Logger) (*report.Result, error) {
	progressCh := make(chan engine.CrawlEvent, 100)
	eng, err := engine.New(cfg, logger, progressCh)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	model := tui.NewModel(ctx, cancel, eng, progressCh)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run tui: %w", err)
	}

	return finalModel.(tui.Model).GetResult(), nil
}

func writeStructuredOutput(opts *cliFlags, res *report.Result) error {
	if res == nil {
		return nil
	}

	var writer io.Writer = os.Stdout
	if opts.outputFile != "" {
		outFile, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if cerr := outFile.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "error closing output file: %v\n", cerr)
			}
		}()
		writer = outFile
	}

	switch opts.outputFormat {
	case "json":
		return report.WriteJSON(writer, res)
	case "csv":
		return report.WriteCSV(writer, res)
	case "html":
		return report.WriteHTML(writer, res, time.Now())
	default:
		return fmt.Errorf("unknown output format %q: want json, csv, or html", opts.outputFormat)
	}
}
