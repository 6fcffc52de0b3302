package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/techniques"
)

func extractCmd() *cobra.Command {
	var (
		instruction string
		enum        []string
		table       []string
	)

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Pull structured data out of free text",
		Long: `extract returns a JSON case record for a customer message by default.
--enum classifies into one of a fixed set of values instead, and --table
asks for a Markdown table with the given columns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := commandInput(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			w := cmd.OutOrStdout()

			switch {
			case cmd.Flags().Changed("enum"):
				v, err := techniques.ClassifyEnum(ctx, llmClient, input, enum)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, v)
			case len(table) > 0:
				t, err := techniques.MarkdownTable(ctx, llmClient, input, table)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
				for _, row := range t.Rows {
					fmt.Fprintln(w, strings.Join(row, "\t"))
				}
			default:
				record, err := techniques.Extract[techniques.CaseRecord](ctx, llmClient, input, instruction)
				if err != nil {
					return err
				}
				return printJSON(w, record)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i",
		"Extract the customer service case details from this message.", "Extraction instruction for the case record")
	cmd.Flags().StringSliceVar(&enum, "enum", techniques.EnumCategories, "Classify into exactly one of these values")
	cmd.Flags().StringSliceVar(&table, "table", nil, "Produce a table with these columns")
	cmd.MarkFlagsMutuallyExclusive("enum", "table")
	return cmd
}
