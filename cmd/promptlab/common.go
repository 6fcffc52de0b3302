package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// readInput joins args, or reads stdin when there are none.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", fmt.Errorf("no input: pass it as arguments or on stdin")
	}
	return input, nil
}

func commandInput(cmd *cobra.Command, args []string) (string, error) {
	return readInput(args, cmd.InOrStdin())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{skipClient: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "LLM:")
			fmt.Fprintf(w, "  Provider:     %s\n", cfg.Provider)
			fmt.Fprintf(w, "  Model:        %s\n", cfg.Model)
			if cfg.Endpoint != "" {
				fmt.Fprintf(w, "  Endpoint:     %s\n", cfg.Endpoint)
			}
			fmt.Fprintf(w, "  API Key:      %s\n", maskSecret(cfg.APIKey()))
			fmt.Fprintf(w, "  Temperature:  %.2f\n", cfg.Temperature)
			fmt.Fprintf(w, "  Max Tokens:   %d\n", cfg.MaxTokens)
			fmt.Fprintf(w, "  Timeout:      %s\n", cfg.Timeout)
			fmt.Fprintf(w, "  Max Retries:  %d\n", cfg.MaxRetries)
			fmt.Fprintf(w, "  Retry Delay:  %s\n", cfg.RetryDelay)
			if cfg.RateLimit > 0 {
				fmt.Fprintf(w, "  Rate Limit:   %.2f/s (burst %d)\n", cfg.RateLimit, cfg.RateBurst)
			}
			fmt.Fprintf(w, "  Log Level:    %s\n", cfg.LogLevel)

			fmt.Fprintln(w, "\nConsensus:")
			fmt.Fprintf(w, "  Samples:      %d\n", cfg.Consensus.Samples)
			fmt.Fprintf(w, "  Temperature:  %.2f\n", cfg.Consensus.Temperature)
			fmt.Fprintf(w, "  Concurrency:  %d\n", cfg.Consensus.Concurrency)
			fmt.Fprintf(w, "  Timeout:      %s\n", cfg.Consensus.Timeout)

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(w, "\nInvalid: %v\n", err)
			}
		},
	}
}
