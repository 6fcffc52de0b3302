package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/techniques"
)

func zeroShotCmd() *cobra.Command {
	var instruction string
	var categories []string

	cmd := &cobra.Command{
		Use:   "zero-shot [text]",
		Short: "Classify text, or follow an instruction, with no examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if instruction != "" {
				reply, err := techniques.ZeroShot(ctx, llmClient, instruction, input)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			}
			category, err := techniques.Classify(ctx, llmClient, input, categories)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), category)
			return nil
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "Free-form instruction instead of classification")
	cmd.Flags().StringSliceVarP(&categories, "categories", "c", techniques.InquiryCategories, "Categories to classify into")
	return cmd
}

func fewShotCmd() *cobra.Command {
	var instruction, examplesFile string

	cmd := &cobra.Command{
		Use:   "few-shot [ticket]",
		Short: "Assign a ticket priority from worked examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			examples := techniques.PriorityExamples
			if examplesFile != "" {
				if examples, err = llm.ReadExamplesFromFile(examplesFile); err != nil {
					return err
				}
			}
			reply, err := techniques.FewShot(ctx, llmClient, instruction, examples, input, llm.WithTemperature(0.2))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i",
		"Classify the support ticket priority as CRITICAL, HIGH, MEDIUM or LOW.", "Instruction shown before the examples")
	cmd.Flags().StringVarP(&examplesFile, "examples", "e", "", "Load examples from a .jsonl or .yaml file instead of the built-in ones")
	return cmd
}

func cotCmd() *cobra.Command {
	var zeroShot bool

	cmd := &cobra.Command{
		Use:   "cot [question]",
		Short: "Answer with step-by-step reasoning",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			var r techniques.Reasoning
			if zeroShot {
				r, err = techniques.ZeroShotCoT(ctx, llmClient, input)
			} else {
				r, err = techniques.ChainOfThought(ctx, llmClient, input, nil)
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, step := range r.Steps {
				fmt.Fprintf(w, "%d. %s\n", i+1, step)
			}
			fmt.Fprintf(w, "\nAnswer: %s\n", r.Answer)
			return nil
		},
	}
	cmd.Flags().BoolVar(&zeroShot, "zero-shot", false, `Only append "think step by step"`)
	return cmd
}

var personas = map[string]techniques.Persona{
	"technical":  techniques.TechnicalExpert,
	"empathetic": techniques.EmpatheticSupport,
	"efficiency": techniques.EfficiencyExpert,
	"account":    techniques.AccountManager,
}

func personaCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "persona [request]",
		Short: "Answer in a persona, or compare all personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			w := cmd.OutOrStdout()

			if as == "all" {
				replies, err := techniques.ComparePersonas(ctx, llmClient, []techniques.Persona{
					techniques.TechnicalExpert,
					techniques.EmpatheticSupport,
					techniques.EfficiencyExpert,
					techniques.AccountManager,
				}, input)
				if err != nil {
					return err
				}
				for _, r := range replies {
					fmt.Fprintf(w, "=== %s ===\n%s\n\n", r.Persona.Name, r.Reply)
				}
				return nil
			}

			p, ok := personas[strings.ToLower(as)]
			if !ok {
				return fmt.Errorf("unknown persona %q (technical, empathetic, efficiency, account, all)", as)
			}
			reply, err := techniques.AskAs(ctx, llmClient, p, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "technical", "Persona: technical, empathetic, efficiency, account or all")
	return cmd
}

func totCmd() *cobra.Command {
	var branches int

	cmd := &cobra.Command{
		Use:   "tot [problem]",
		Short: "Explore several solution paths and pick one",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			ex, err := techniques.TreeOfThoughts(ctx, llmClient, input, branches)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, b := range ex.Branches {
				fmt.Fprintf(w, "PATH %d: %s\n%s\n\n", b.Number, b.Title, b.Body)
			}
			if ex.Evaluation != "" {
				fmt.Fprintf(w, "EVALUATION:\n%s\n\n", ex.Evaluation)
			}
			fmt.Fprintf(w, "DECISION:\n%s\n", ex.Decision)
			return nil
		},
	}
	cmd.Flags().IntVarP(&branches, "branches", "b", 3, "Number of paths to explore")
	return cmd
}

func chainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain [email]",
		Short: "Triage a customer email through extract, classify, plan and reply steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			results, err := techniques.EmailTriageChain().Run(ctx, llmClient, input)
			w := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(w, "=== %s ===\n%s\n\n", r.Name, r.Output)
			}
			return err
		},
	}
}

func metaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Use the model to write and fix prompts",
	}

	var background string
	improve := &cobra.Command{
		Use:   "improve [prompt]",
		Short: "Rewrite a weak prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeta(cmd, args, func(ctx context.Context, input string) (string, error) {
				return techniques.ImprovePrompt(ctx, llmClient, input, background)
			})
		},
	}
	improve.Flags().StringVar(&background, "background", "", "What the prompt is for")

	strategy := &cobra.Command{
		Use:   "strategy [task]",
		Short: "Recommend a prompting technique for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeta(cmd, args, func(ctx context.Context, input string) (string, error) {
				return techniques.SelectStrategy(ctx, llmClient, input)
			})
		},
	}

	generate := &cobra.Command{
		Use:   "generate [requirements]",
		Short: "Write a prompt from requirements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeta(cmd, args, func(ctx context.Context, input string) (string, error) {
				return techniques.GeneratePrompt(ctx, llmClient, input)
			})
		},
	}

	var symptoms string
	debug := &cobra.Command{
		Use:   "debug [prompt]",
		Short: "Diagnose why a prompt misbehaves",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeta(cmd, args, func(ctx context.Context, input string) (string, error) {
				return techniques.DebugPrompt(ctx, llmClient, input, symptoms)
			})
		},
	}
	debug.Flags().StringVar(&symptoms, "symptoms", "", "What goes wrong with the prompt")
	_ = debug.MarkFlagRequired("symptoms")

	cmd.AddCommand(improve, strategy, generate, debug)
	return cmd
}

func runMeta(cmd *cobra.Command, args []string, run func(ctx context.Context, input string) (string, error)) error {
	input, err := commandInput(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	reply, err := run(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
