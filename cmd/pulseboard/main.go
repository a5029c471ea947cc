package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/pulseboard/internal/compose"
	"github.com/TobiSchelling/pulseboard/internal/config"
	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/pipeline"
	"github.com/TobiSchelling/pulseboard/internal/server"
	"github.com/TobiSchelling/pulseboard/internal/trending"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "pulseboard",
	Short:   "Real-time topic intelligence",
	Long:    "PulseBoard gathers discussions and news about a topic, scores them and writes a short briefing.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetReportTimestamp(false)

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Loading .env failed", "err", err)
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level, err := log.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = log.InfoLevel
		}
		if verbose {
			level = log.DebugLevel
			log.SetReportCaller(true)
		}
		log.SetLevel(level)
		if path != "" {
			log.Debug("Config loaded", "path", path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pulseboard", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/pulseboard/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to choose sources, cache TTL, and an optional LLM provider.")
		return nil
	},
}

// --- analyze command ---

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <topic...>",
	Short: "Analyze a topic and print the briefing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(analyzeFormat, "text", "json", "markdown"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		topic := strings.Join(args, " ")
		res, err := pipeline.FromConfig(ctx, cfg).Analyze(ctx, topic)
		if errors.Is(err, pipeline.ErrInvalidTopic) {
			return fmt.Errorf("topic is required")
		}
		if err != nil {
			return fmt.Errorf("analyzing %q: %w", topic, err)
		}

		switch analyzeFormat {
		case "json":
			return printJSON(res)
		case "markdown":
			fmt.Print(compose.Markdown(res))
		default:
			fmt.Print(renderResult(res))
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text, json, markdown")
}

// --- trending command ---

var trendingFormat string

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(trendingFormat, "text", "json"); err != nil {
			return err
		}

		topics, err := trending.FromConfig(cfg, newClient()).Topics(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading trending topics: %w", err)
		}

		if trendingFormat == "json" {
			return printJSON(topics)
		}
		fmt.Print(renderTrending(topics))
		return nil
	},
}

func init() {
	trendingCmd.Flags().StringVarP(&trendingFormat, "format", "f", "text", "Output format: text, json")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(pipeline.FromConfig(ctx, cfg), trending.FromConfig(cfg, newClient()))
		if err != nil {
			return err
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, srv, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func newClient() *fetch.Client {
	return fetch.NewClient(fetch.Options{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
	})
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
