package techniques

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/uuid"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

const (
	DefaultMaxIterations = 5
	defaultMemoryTokens  = 4000
)

// Tool is one action the agent may take. Run receives the parsed arguments
// and returns a JSON-serialisable observation.
type Tool struct {
	Name        string
	Params      []string
	Description string
	Run         func(ctx context.Context, args []string) (any, error)
}

// Toolbox maps action names to tools.
type Toolbox struct {
	tools map[string]Tool
}

func NewToolbox(tools ...Tool) (*Toolbox, error) {
	tb := &Toolbox{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := tb.Register(t); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

func (tb *Toolbox) Register(t Tool) error {
	if t.Name == "" || t.Run == nil {
		return fmt.Errorf("tool needs a name and a Run func")
	}
	if _, dup := tb.tools[t.Name]; dup {
		return fmt.Errorf("tool %s already registered", t.Name)
	}
	tb.tools[t.Name] = t
	return nil
}

func (tb *Toolbox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Names returns the tool names sorted.
func (tb *Toolbox) Names() []string {
	names := make([]string, 0, len(tb.tools))
	for name := range tb.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe lists the tools in the "- name(params): description" form the
// agent prompt uses.
func (tb *Toolbox) Describe() string {
	var sb strings.Builder
	for i, name := range tb.Names() {
		t := tb.tools[name]
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s(%s): %s", t.Name, strings.Join(t.Params, ", "), t.Description)
	}
	return sb.String()
}

// Action is a parsed "Action: name(args)" line.
type Action struct {
	Name string
	Args []string
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(a.Args, ", "))
}

var actionLine = regexp.MustCompile(`(?m)^\s*\**Action\**\s*:\s*\**\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:\((.*)\))?`)

// ParseAction finds the first Action line in text. Arguments are split on
// top-level commas; quotes around an argument are removed and bracketed
// lists are kept whole.
func ParseAction(text string) (Action, error) {
	m := actionLine.FindStringSubmatch(text)
	if m == nil {
		return Action{}, ErrNoAction
	}
	return Action{Name: m[1], Args: splitArgs(m[2])}, nil
}

func splitArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		depth int
		quote rune
	)
	flush := func() {
		if arg := unquote(strings.TrimSpace(cur.String())); arg != "" {
			args = append(args, arg)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case r == ',' && depth == 0:
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return args
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// ListArg splits a bracketed list argument such as ["Wireless Mouse", "Cable"].
// A bare value is a one-element list.
func ListArg(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return splitArgs(s[1 : len(s)-1])
	}
	if s == "" {
		return nil
	}
	return []string{unquote(s)}
}

// Step is one Thought/Action/Observation cycle.
type Step struct {
	Thought     string
	Action      *Action
	Observation string
	Reply       string
}

type Trace struct {
	ID     string
	Steps  []Step
	Answer string
}

// Agent runs the ReAct loop: the model reasons, names an action, and sees
// the tool's output before reasoning again.
type Agent struct {
	LLM           llm.LLM
	Tools         *Toolbox
	MaxIterations int
	// Tokenizer sizes the transcript memory. Defaults to the model's
	// tiktoken encoding.
	Tokenizer    llm.Tokenizer
	MemoryTokens int
	Temperature  float64
	Logger       utils.Logger
}

var reactInstructions = heredoc.Doc(`
	You are a customer service agent.
	Use the ReAct pattern: alternate between Thought, Action and Observation.

	Available actions:
	%s

	Use this format:
	Thought: <your reasoning about what to do next>
	Action: <action_name>(<arguments>)

	Take one action per reply and wait for its Observation.
	Do not write the Observation yourself.
	When you can answer the customer, reply with:
	Final Answer: <your response to the customer>`)

func (a *Agent) memory() (*llm.Memory, error) {
	tokenizer := a.Tokenizer
	if tokenizer == nil {
		t, err := llm.NewTiktokenTokenizer(a.LLM.GetModel(), a.logger())
		if err != nil {
			a.logger().Warn("Falling back to word count tokenizer", "error", err)
			t = llm.WordTokenizer
		}
		tokenizer = t
	}
	budget := a.MemoryTokens
	if budget <= 0 {
		budget = defaultMemoryTokens
	}
	return llm.NewMemory(budget, tokenizer, a.logger())
}

func (a *Agent) logger() utils.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	if l := a.LLM.GetLogger(); l != nil {
		return l
	}
	return utils.NewNopLogger()
}

// Run works on task until the model gives a final answer or the iteration
// limit is reached, in which case the partial trace is returned with
// ErrIterationsExhausted.
func (a *Agent) Run(ctx context.Context, task string) (Trace, error) {
	trace := Trace{ID: uuid.NewString()}
	if a.Tools == nil {
		return trace, fmt.Errorf("agent has no tools")
	}
	maxIter := a.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	mem, err := a.memory()
	if err != nil {
		return trace, err
	}
	conv := llm.NewLLMWithMemory(a.LLM, mem)
	system := fmt.Sprintf(reactInstructions, a.Tools.Describe())
	logger := a.logger()

	next := "Customer message:\n" + strings.TrimSpace(task)
	for i := 0; i < maxIter; i++ {
		reply, err := conv.Generate(ctx, llm.NewPrompt(next, llm.WithSystemPrompt(system)), llm.WithTemperature(a.Temperature))
		if err != nil {
			return trace, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		step := Step{Reply: reply, Thought: thoughtOf(reply)}

		// An action always runs; an answer or observation written after it in
		// the same reply is ignored.
		if action, err := ParseAction(reply); err == nil {
			step.Action = &action
			step.Observation = a.observe(ctx, action)
		} else if answer, ok := finalAnswer(reply); ok {
			trace.Steps = append(trace.Steps, step)
			trace.Answer = answer
			logger.Info("Agent finished", "trace_id", trace.ID, "iterations", i+1)
			return trace, nil
		} else {
			step.Observation = "Continue with your response."
		}
		logger.Debug("Agent step", "trace_id", trace.ID, "iteration", i+1, "action", step.Action, "observation", step.Observation)

		trace.Steps = append(trace.Steps, step)
		next = step.Observation
	}
	return trace, ErrIterationsExhausted
}

func (a *Agent) observe(ctx context.Context, action Action) string {
	tool, ok := a.Tools.Get(action.Name)
	if !ok {
		return fmt.Sprintf("Observation: unknown action %q. Available actions: %s",
			action.Name, strings.Join(a.Tools.Names(), ", "))
	}
	result, err := tool.Run(ctx, action.Args)
	if err != nil {
		return fmt.Sprintf("Observation: %s failed: %v", action.Name, err)
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Observation: %s returned an unencodable result: %v", action.Name, err)
	}
	return fmt.Sprintf("Observation: %s", out)
}

var (
	thoughtLine = regexp.MustCompile(`(?m)^\s*\**Thought\**\s*:\s*\**\s*(.+)$`)
	finalLine   = regexp.MustCompile(`(?is)\**(?:Final Answer|Response to Customer)\**\s*:\s*\**\s*(.*)$`)
)

func thoughtOf(reply string) string {
	if m := thoughtLine.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func finalAnswer(reply string) (string, bool) {
	m := finalLine.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
