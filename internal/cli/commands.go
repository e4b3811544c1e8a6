package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyike/StockLens/config"
	"github.com/dyike/StockLens/internal/dataflows"
	"github.com/dyike/StockLens/internal/devapi"
	"github.com/dyike/StockLens/internal/display"
	"github.com/dyike/StockLens/internal/logger"
	"github.com/dyike/StockLens/internal/web"
	"github.com/dyike/StockLens/internal/widget"
)

// Version is overridden at build time with -ldflags.
var Version = "v1.0.0"

// app carries what every subcommand needs once PersistentPreRunE has run.
type app struct {
	cfg     *config.Config
	manager *config.Manager
	log     *logrus.Logger

	configPath string
	apiURL     string
	debug      bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "stockanalyzer",
		Short: "Stock Analyzer AI - bullish and bearish views for any ticker",
		Long: `Stock Analyzer AI asks an analysis service for the latest price of a stock
together with bullish and bearish views, and shows them in the terminal or in a browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(contextOrBackground(cmd.Context()), cmd.OutOrStdout(), PromptForSymbol)
		},
	}

	rootCmd.AddCommand(a.newAnalyzeCmd())
	rootCmd.AddCommand(a.newServeCmd())
	rootCmd.AddCommand(a.newDevAPICmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file path (JSON, reloaded by serve)")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Analysis service base URL")

	return rootCmd
}

// init loads the environment, the optional config file and the flags, in
// increasing precedence, then sets up logging.
func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.applyFlags(cfg)

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.log = log

	if a.configPath != "" {
		manager, err := config.NewManager(
			config.WithConfigPath(a.configPath),
			config.WithInitialConfig(cfg),
			config.WithLogger(log),
		)
		if err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
		a.manager = manager
		fileCfg := manager.Get()
		cfg = &fileCfg
		a.applyFlags(cfg)
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(level)
		}
	}

	a.cfg = cfg
	log.WithFields(logrus.Fields{
		"api_base_url": cfg.APIBaseURL,
		"config_file":  a.configPath,
	}).Debug("configuration loaded")
	return nil
}

func (a *app) applyFlags(cfg *config.Config) {
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
}

func (a *app) newClient(cfg config.Config) *dataflows.AnalysisClient {
	return dataflows.NewAnalysisClient(cfg.APIBaseURL, cfg.RequestTimeout(), a.log)
}

// newAnalyzeCmd creates the analyze command
func (a *app) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Analyze one stock symbol and print the result",
		Long: `Submit one symbol to the analysis service and print the result panels.
Example: stockanalyzer analyze AAPL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(contextOrBackground(cmd.Context()), cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runAnalyze(ctx context.Context, out io.Writer, symbol string) error {
	w := widget.New(a.newClient(*a.cfg))
	w.SetSymbol(symbol)
	if !w.Submit(ctx) {
		return errors.New("symbol is required")
	}

	state := w.State()
	fmt.Fprintln(out, display.Render(widget.Render(state, time.Local)))
	if state.Phase() == widget.PhaseError {
		return fmt.Errorf("analysis failed: %s", state.ErrorMessage)
	}
	return nil
}

func (a *app) newServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.ListenAddr
			}
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	return cmd
}

func (a *app) runServe(ctx context.Context, listen string) error {
	srv, err := web.NewServer(web.Options{
		Analyzer:   a.newClient(*a.cfg),
		APIBaseURL: a.cfg.APIBaseURL,
		Logger:     a.log,
		Debug:      a.cfg.Debug,
	})
	if err != nil {
		return err
	}

	if a.manager != nil {
		err := a.manager.Watch(ctx, func(cfg config.Config) {
			a.applyFlags(&cfg)
			if err := srv.SetUpstream(a.newClient(cfg), cfg.APIBaseURL); err != nil {
				a.log.Warnf("apply reloaded config: %v", err)
				return
			}
			a.log.Infof("analysis service now %s", cfg.APIBaseURL)
		})
		if err != nil {
			a.log.Warnf("config hot reload disabled: %v", err)
		}
	}

	display.DisplayInfo(fmt.Sprintf("Front-end on http://localhost%s (analysis service %s)", listen, a.cfg.APIBaseURL))
	return srv.Run(ctx, listen)
}

func (a *app) newDevAPICmd() *cobra.Command {
	var (
		listen string
		source string
		llm    bool
	)
	cmd := &cobra.Command{
		Use:   "devapi",
		Short: "Run a local analysis service for development",
		Long: `Run a local implementation of the analysis API (/api/analyze/{symbol} and /api/health).
Prices come from mock data, Yahoo Finance or Longport; views come from built-in rules or an
OpenAI compatible model when --llm is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if listen != "" {
				cfg.DevAPIListenAddr = listen
			}
			if source != "" {
				cfg.DevAPISource = source
			}
			if cmd.Flags().Changed("llm") {
				cfg.LLMEnabled = llm
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := devapi.NewSource(&cfg, a.log)
			if err != nil {
				return err
			}
			analyst, err := devapi.NewAnalyst(ctx, &cfg, a.log)
			if err != nil {
				return err
			}
			srv, err := devapi.NewServer(devapi.Options{
				Source:  src,
				Analyst: analyst,
				Logger:  a.log,
				Debug:   cfg.Debug,
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx, cfg.DevAPIListenAddr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&source, "source", "", "Price source: mock, yahoo or longport")
	cmd.Flags().BoolVar(&llm, "llm", false, "Generate views with the configured chat model")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockanalyzer %s\n", Version)
			fmt.Fprintln(cmd.OutOrStdout(), "AI-powered bullish and bearish stock views")
		},
	}
}

// newConfigCmd creates the config command
func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and reach the analysis service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig(contextOrBackground(cmd.Context()), cmd.OutOrStdout())
		},
	})

	return configCmd
}

func showConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "📋 Current Configuration:")
	fmt.Fprintln(out, "═══════════════════════════════════════")
	fmt.Fprintf(out, "Analysis Service:     %s\n", cfg.APIBaseURL)
	fmt.Fprintf(out, "Request Timeout:      %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "Web Listen Address:   %s\n", cfg.ListenAddr)
	fmt.Fprintf(out, "Log Level:            %s\n", cfg.LogLevel)
	if cfg.LogFile != "" {
		fmt.Fprintf(out, "Log File:             %s\n", cfg.LogFile)
	}
	fmt.Fprintf(out, "Debug Mode:           %t\n", cfg.Debug)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Dev API Listen:       %s\n", cfg.DevAPIListenAddr)
	fmt.Fprintf(out, "Dev API Source:       %s\n", cfg.DevAPISource)
	fmt.Fprintf(out, "LLM Views:            %t (%s @ %s)\n", cfg.LLMEnabled, cfg.LLMModel, cfg.LLMBaseURL)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "🔌 API Keys:")
	fmt.Fprintln(out, "─────────────────────")
	fmt.Fprintf(out, "LLM API Key:          %s\n", configured(cfg.LLMAPIKey != ""))
	fmt.Fprintf(out, "Longport:             %s\n",
		configured(cfg.LongportAppKey != "" && cfg.LongportAppSecret != "" && cfg.LongportAccessToken != ""))
}

func configured(ok bool) string {
	if ok {
		return "✅ Configured"
	}
	return "❌ Not configured"
}

// validateConfig checks the settings and pings the analysis service. An
// unreachable service is reported as a warning.
func (a *app) validateConfig(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, "🔍 Validating Configuration...")
	fmt.Fprintln(out, "═══════════════════════════════════════")

	fmt.Fprint(out, "⚙️  Checking configuration values... ")
	if err := a.cfg.Validate(); err != nil {
		fmt.Fprintln(out, "❌")
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Fprintln(out, "✅")

	fmt.Fprintf(out, "🌊 Reaching %s... ", a.cfg.APIBaseURL)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	status, err := a.newClient(*a.cfg).Health(ctx)
	if err != nil {
		fmt.Fprintln(out, "⚠️")
		fmt.Fprintf(out, "  ⚠️  %v\n", err)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "⚠️  Configuration is valid but the analysis service is not reachable.")
		return nil
	}
	fmt.Fprintf(out, "✅ (%s)\n", status.Status)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "✅ Configuration validation completed successfully!")
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
