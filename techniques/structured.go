package techniques

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// Extract pulls a T out of text. The JSON schema is reflected from T and the
// reply is checked against T's validate tags.
func Extract[T any](ctx context.Context, l llm.LLM, text, instruction string) (T, error) {
	var out T
	prompt := llm.NewPrompt(strings.TrimSpace(text),
		llm.WithDirectives(instruction, "Output only valid JSON, no other text."),
	)
	raw, err := l.GenerateWithSchema(ctx, prompt, out, llm.WithTemperature(0.1))
	if err != nil {
		return out, err
	}
	if err := llm.DecodeAndValidate(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// CaseRecord is the support case summary used by the extraction demo.
type CaseRecord struct {
	Customer struct {
		Name        string `json:"name" validate:"required"`
		Email       string `json:"email" validate:"omitempty,email"`
		Phone       string `json:"phone"`
		TotalOrders int    `json:"total_orders" validate:"gte=0"`
	} `json:"customer"`
	Order struct {
		OrderID string `json:"order_id" validate:"required"`
		Date    string `json:"date" jsonschema:"description=YYYY-MM-DD"`
		Items   []struct {
			Product   string  `json:"product" validate:"required"`
			Quantity  int     `json:"quantity" validate:"gte=1"`
			UnitPrice float64 `json:"unit_price" validate:"gte=0"`
		} `json:"items" validate:"dive"`
		TotalAmount float64 `json:"total_amount" validate:"gte=0"`
	} `json:"order"`
	Issue struct {
		Description string `json:"description"`
		Category    string `json:"category"`
		Sentiment   string `json:"sentiment" validate:"oneof=positive neutral negative" jsonschema:"enum=positive,enum=neutral,enum=negative"`
	} `json:"issue"`
}

// EnumCategories are the routing categories for ClassifyEnum.
var EnumCategories = []string{
	"ORDER_STATUS",
	"PRODUCT_RETURN",
	"TECHNICAL_SUPPORT",
	"ACCOUNT_MANAGEMENT",
	"PRODUCT_INQUIRY",
	"BILLING_ISSUE",
	"COMPLAINT",
}

// ClassifyEnum returns exactly one of options. Unlike Classify it does not
// search the reply for a category: anything else is ErrUnknownCategory.
func ClassifyEnum(ctx context.Context, l llm.LLM, message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("classify: no options given")
	}
	prompt := llm.NewPrompt(heredoc.Docf(`
		Classify this customer message into EXACTLY ONE of these categories:
		%s

		Customer message: %q`, strings.Join(options, "\n"), message),
		llm.WithOutput("Respond with ONLY the category name, nothing else.\nCategory:"),
	)
	reply, err := l.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return "", err
	}
	if c, ok := exactCategory(reply, options); ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, strings.TrimSpace(reply))
}

// Table is a parsed Markdown table.
type Table struct {
	Columns []string
	Rows    [][]string
}

// MarkdownTable asks for a Markdown table with exactly columns and parses it.
func MarkdownTable(ctx context.Context, l llm.LLM, instruction string, columns []string) (Table, error) {
	header := "| " + strings.Join(columns, " | ") + " |"
	prompt := llm.NewPrompt(strings.TrimSpace(instruction),
		llm.WithOutput(heredoc.Docf(`
			Output as a Markdown table with these exact columns:
			%s
			Output ONLY the table, no other text.`, header)),
	)
	reply, err := l.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return Table{}, err
	}
	return ParseMarkdownTable(reply, columns)
}

// ParseMarkdownTable reads the first table in s. The header must match
// columns, ignoring case; separator rows are skipped.
func ParseMarkdownTable(s string, columns []string) (Table, error) {
	t := Table{Columns: columns}
	headerSeen := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			if headerSeen {
				break
			}
			continue
		}
		cells := splitRow(line)
		if isSeparator(cells) {
			continue
		}
		if !headerSeen {
			if len(cells) != len(columns) {
				return t, fmt.Errorf("table has %d columns, want %d", len(cells), len(columns))
			}
			for i, c := range cells {
				if !strings.EqualFold(c, columns[i]) {
					return t, fmt.Errorf("column %d is %q, want %q", i+1, c, columns[i])
				}
			}
			headerSeen = true
			continue
		}
		if len(cells) != len(columns) {
			return t, fmt.Errorf("row %d has %d cells, want %d", len(t.Rows)+1, len(cells), len(columns))
		}
		t.Rows = append(t.Rows, cells)
	}
	if !headerSeen {
		return t, fmt.Errorf("no Markdown table found")
	}
	return t, nil
}

func splitRow(line string) []string {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, ":-") != "" || c == "" {
			return false
		}
	}
	return true
}
