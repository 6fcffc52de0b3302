// Command promptlab runs the prompting techniques against a hosted model.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/providers"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

var (
	cfg       *config.Config
	llmClient llm.LLM
	logger    utils.Logger

	closers       []func() error
	metricsServer *http.Server
)

// rootFlags override the environment when set.
type rootFlags struct {
	provider    string
	model       string
	endpoint    string
	apiKey      string
	logLevel    string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	metricsAddr string
	transcript  string
}

// skipClient marks commands that do not talk to a model.
const skipClient = "skip-client"

func main() {
	err := newRootCmd().Execute()
	// Post-run hooks are skipped when a command fails.
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "promptlab",
		Short: "Prompt engineering techniques, one subcommand each",
		Long: `promptlab runs zero-shot, few-shot, chain-of-thought, persona,
self-consistency, ReAct, tree-of-thoughts, chaining, structured output and
meta-prompting examples against an OpenAI, Anthropic or Ollama model.

Configuration comes from LLM_* and CONSENSUS_* environment variables and
<PROVIDER>_API_KEY; flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger = utils.NewLogger(cfg.LogLevel)

			if flags.metricsAddr != "" {
				startMetrics(flags.metricsAddr)
			}
			if cmd.Annotations[skipClient] == "true" {
				return nil
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			client, err := llm.NewLLM(cfg, logger, providers.NewProviderRegistry())
			if err != nil {
				return fmt.Errorf("failed to create LLM client: %w", err)
			}
			closers = append(closers, func() error { client.Close(); return nil })
			llmClient = client

			if flags.transcript != "" {
				f, err := os.OpenFile(flags.transcript, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open transcript: %w", err)
				}
				closers = append(closers, f.Close)
				llmClient = llm.NewTranscriptLLM(client, f)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			cleanup()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.provider, "provider", "", "LLM provider (openai, anthropic, ollama)")
	pf.StringVar(&flags.model, "model", "", "LLM model")
	pf.StringVar(&flags.endpoint, "endpoint", "", "Override the provider endpoint URL")
	pf.StringVar(&flags.apiKey, "api-key", "", "API key for the provider")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (off, error, warn, info, debug)")
	pf.Float64Var(&flags.temperature, "temperature", 0, "Default sampling temperature")
	pf.IntVar(&flags.maxTokens, "max-tokens", 0, "Default max tokens per reply")
	pf.DurationVar(&flags.timeout, "timeout", 0, "HTTP timeout per request")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
	pf.StringVar(&flags.transcript, "transcript", "", "Append every prompt and reply to this JSON Lines file")

	rootCmd.AddCommand(
		zeroShotCmd(),
		fewShotCmd(),
		cotCmd(),
		personaCmd(),
		voteCmd(),
		reactCmd(),
		totCmd(),
		chainCmd(),
		extractCmd(),
		metaCmd(),
		configCmd(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	c, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	changed := cmd.Flags().Changed
	var opts []config.ConfigOption
	if changed("provider") {
		opts = append(opts, config.SetProvider(flags.provider))
	}
	if changed("model") {
		opts = append(opts, config.SetModel(flags.model))
	}
	if changed("endpoint") {
		opts = append(opts, config.SetEndpoint(flags.endpoint))
	}
	if changed("api-key") {
		opts = append(opts, config.SetAPIKey(flags.apiKey))
	}
	if changed("temperature") {
		opts = append(opts, config.SetTemperature(flags.temperature))
	}
	if changed("max-tokens") {
		opts = append(opts, config.SetMaxTokens(flags.maxTokens))
	}
	if changed("timeout") {
		opts = append(opts, config.SetTimeout(flags.timeout))
	}
	if changed("log-level") {
		var level utils.LogLevel
		if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return nil, err
		}
		opts = append(opts, config.SetLogLevel(level))
	}
	config.ApplyOptions(c, opts...)
	return c, nil
}

func cleanup() {
	for _, c := range closers {
		if err := c(); err != nil && logger != nil {
			logger.Warn("Cleanup failed", "error", err)
		}
	}
	closers = nil
	llmClient = nil
	stopMetrics()
}

func startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", addr)
}

func stopMetrics() {
	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)
	metricsServer = nil
}

// commandContext is cancelled on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
