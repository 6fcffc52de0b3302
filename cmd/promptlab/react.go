package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/catalog"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/techniques"
)

func reactCmd() *cobra.Command {
	var (
		catalogPath   string
		maxIterations int
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "react [customer message]",
		Short: "Answer a customer with a tool-using ReAct agent",
		Long: `react lets the model look up orders, stock, return eligibility and refunds
in a store catalog before answering. The built-in catalog holds order
SM-2026-12345; --catalog loads another YAML file of the same shape.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			c, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			agent := &techniques.Agent{
				LLM:           llmClient,
				Tools:         techniques.CustomerServiceTools(c, time.Now),
				MaxIterations: maxIterations,
				Temperature:   0.3,
				Logger:        logger,
			}
			trace, err := agent.Run(ctx, input)
			w := cmd.OutOrStdout()
			if verbose || err != nil {
				for i, step := range trace.Steps {
					fmt.Fprintf(w, "--- Iteration %d ---\n", i+1)
					if step.Thought != "" {
						fmt.Fprintf(w, "Thought: %s\n", step.Thought)
					}
					if step.Action != nil {
						fmt.Fprintf(w, "Action: %s\n", step.Action)
						fmt.Fprintf(w, "%s\n", step.Observation)
					}
				}
				fmt.Fprintln(w)
			}
			if err != nil {
				if errors.Is(err, techniques.ErrIterationsExhausted) {
					return fmt.Errorf("no answer after %d iterations: %w", len(trace.Steps), err)
				}
				return err
			}
			fmt.Fprintln(w, trace.Answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (default: built-in)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", techniques.DefaultMaxIterations, "Maximum Thought/Action cycles")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every Thought, Action and Observation")
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return catalog.Load(f)
}
