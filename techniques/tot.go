package techniques

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// Branch is one explored solution path.
type Branch struct {
	Number int
	Title  string
	Body   string
}

// Exploration is a parsed tree-of-thoughts reply.
type Exploration struct {
	Branches   []Branch
	Evaluation string
	Decision   string
	Raw        string
}

// TreeOfThoughts asks the model to develop several distinct approaches,
// compare them and pick one, all in a single reply.
func TreeOfThoughts(ctx context.Context, l llm.LLM, problem string, branches int, opts ...llm.GenerateOption) (Exploration, error) {
	if branches < 2 {
		return Exploration{}, fmt.Errorf("tree of thoughts needs at least 2 branches, got %d", branches)
	}

	prompt := llm.NewPrompt(strings.TrimSpace(problem),
		llm.WithOutput(heredoc.Docf(`
			Use Tree of Thoughts: explore %d different solution paths, evaluate each, then choose the best.

			Format:
			PATH 1: <approach name>
			Solution: <detailed solution>
			Pros: <benefits>
			Cons: <drawbacks>
			Cost: <estimated cost>

			PATH 2: <a different approach>
			...

			EVALUATION:
			<compare the paths>

			FINAL DECISION:
			<best path and why>`, branches)),
	)
	opts = withDefaultTemperature(0.8, append([]llm.GenerateOption{llm.WithMaxTokens(1500)}, opts...))
	reply, err := l.Generate(ctx, prompt, opts...)
	if err != nil {
		return Exploration{}, err
	}

	exp := ParseExploration(reply)
	if len(exp.Branches) == 0 {
		return exp, fmt.Errorf("reply has no PATH sections")
	}
	return exp, nil
}

var (
	pathHeader    = regexp.MustCompile(`(?im)^[\s#*]*PATH\s+(\d+)\s*[:.\-]\s*\**\s*(.*)$`)
	sectionHeader = regexp.MustCompile(`(?im)^[\s#*]*(EVALUATION|FINAL DECISION)\**\s*:\**\s*(.*)$`)
)

// ParseExploration splits a reply on its PATH, EVALUATION and FINAL DECISION
// headers. Text before the first header is ignored.
func ParseExploration(reply string) Exploration {
	exp := Exploration{Raw: reply}

	type mark struct {
		start, bodyStart int
		kind             string
		num              int
		title            string
	}
	var marks []mark
	for _, m := range pathHeader.FindAllStringSubmatchIndex(reply, -1) {
		n, _ := strconv.Atoi(reply[m[2]:m[3]])
		marks = append(marks, mark{
			start: m[0], bodyStart: m[1], kind: "PATH", num: n,
			title: strings.TrimSpace(strings.Trim(reply[m[4]:m[5]], "*")),
		})
	}
	for _, m := range sectionHeader.FindAllStringSubmatchIndex(reply, -1) {
		// keep text on the header line as part of the body
		marks = append(marks, mark{start: m[0], bodyStart: m[4], kind: strings.ToUpper(reply[m[2]:m[3]])})
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].start < marks[j].start })

	for i, mk := range marks {
		end := len(reply)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		body := strings.TrimSpace(reply[mk.bodyStart:end])
		switch mk.kind {
		case "PATH":
			exp.Branches = append(exp.Branches, Branch{Number: mk.num, Title: mk.title, Body: body})
		case "EVALUATION":
			exp.Evaluation = body
		case "FINAL DECISION":
			exp.Decision = body
		}
	}
	return exp
}
