package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/consensus"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/techniques"
)

type voteFlags struct {
	labels      []string
	samples     int
	temperature float64
	concurrency int
	regex       string
	trailing    bool
	amount      bool
}

func voteCmd() *cobra.Command {
	flags := &voteFlags{}

	cmd := &cobra.Command{
		Use:   "vote [prompt]",
		Short: "Sample a prompt several times and take the majority answer",
		Long: `vote sends the same prompt several times at a non-zero temperature and
counts which label each reply names. Confidence is the winning vote count
divided by the number of samples requested.

Use --amount instead of --labels when the answer is a dollar figure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			if len(flags.labels) == 0 && !flags.amount {
				return fmt.Errorf("either --labels or --amount is required")
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			sc := techniques.NewSelfConsistency(cfg.Consensus, flags.labels...)
			sc.Logger = logger
			changed := cmd.Flags().Changed
			if changed("samples") {
				sc.Samples = flags.samples
			}
			if changed("sample-temperature") {
				sc.Temperature = flags.temperature
			}
			if changed("concurrency") {
				sc.Concurrency = flags.concurrency
			}
			switch {
			case flags.regex != "":
				m, err := consensus.NewRegexMatcher(flags.regex)
				if err != nil {
					return err
				}
				sc.Matcher = m
			case flags.trailing:
				sc.Matcher = consensus.TrailingLineMatcher{}
			}

			var (
				result consensus.Result
				round  consensus.Round
			)
			if flags.amount {
				result, round, err = sc.DecideOpen(ctx, llmClient, input, techniques.DollarAmount)
			} else {
				result, round, err = sc.Decide(ctx, llmClient, input)
			}
			if err != nil && !errors.Is(err, consensus.ErrInconclusive) {
				return err
			}
			printVote(cmd.OutOrStdout(), result, round, err)
			return err
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&flags.labels, "labels", "l", nil, "Candidate labels in priority order, e.g. CRITICAL,HIGH,MEDIUM,LOW")
	f.IntVarP(&flags.samples, "samples", "n", 0, "Samples per round (default from CONSENSUS_SAMPLES)")
	f.Float64Var(&flags.temperature, "sample-temperature", 0, "Sampling temperature (default from CONSENSUS_TEMPERATURE)")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Concurrent requests (default from CONSENSUS_CONCURRENCY)")
	f.StringVar(&flags.regex, "regex", "", "Extract the label from the last match of this pattern's first group")
	f.BoolVar(&flags.trailing, "trailing", false, "Only read the label from the last non-empty line")
	f.BoolVar(&flags.amount, "amount", false, "Vote on the last dollar amount in each reply")
	cmd.MarkFlagsMutuallyExclusive("regex", "trailing", "amount")
	cmd.MarkFlagsMutuallyExclusive("labels", "amount")
	return cmd
}

func printVote(w io.Writer, result consensus.Result, round consensus.Round, err error) {
	if errors.Is(err, consensus.ErrInconclusive) {
		fmt.Fprintf(w, "Inconclusive: no label in %d replies\n", len(round.Samples))
	} else {
		fmt.Fprintf(w, "Decision:   %s\n", result.Label)
		fmt.Fprintf(w, "Votes:      %d/%d\n", result.Votes, result.SampleCount)
		fmt.Fprintf(w, "Confidence: %.0f%%\n", result.Confidence*100)
	}
	if round.Failed > 0 {
		fmt.Fprintf(w, "Failed:     %d\n", round.Failed)
	}
	if len(result.Breakdown) > 0 {
		fmt.Fprintln(w, "\nBreakdown:")
		for _, lc := range result.Breakdown {
			fmt.Fprintf(w, "  %-12s %d\n", lc.Label, lc.Votes)
		}
	}
}
