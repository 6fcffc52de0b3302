package techniques

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// Persona frames the model as someone specific via the system prompt.
type Persona struct {
	Name   string
	Role   string
	Traits []string
	Style  string
}

// SystemPrompt renders the persona as a developer instruction.
func (p Persona) SystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are ")
	sb.WriteString(p.Role)
	sb.WriteString(".")
	if len(p.Traits) > 0 {
		sb.WriteString(" You are ")
		sb.WriteString(joinTraits(p.Traits))
		sb.WriteString(".")
	}
	if p.Style != "" {
		sb.WriteString(" ")
		sb.WriteString(p.Style)
	}
	return sb.String()
}

func joinTraits(traits []string) string {
	switch len(traits) {
	case 1:
		return traits[0]
	case 2:
		return traits[0] + " and " + traits[1]
	default:
		return strings.Join(traits[:len(traits)-1], ", ") + " and " + traits[len(traits)-1]
	}
}

var (
	TechnicalExpert = Persona{
		Name:   "Technical Expert",
		Role:   "a senior technical support specialist with 10 years of experience in computer peripherals and wireless devices",
		Traits: []string{"patient", "professional"},
		Style:  "Explain technical concepts clearly, ask diagnostic questions efficiently and give step-by-step solutions.",
	}
	EmpatheticSupport = Persona{
		Name:   "Customer Service",
		Role:   "a customer service representative who genuinely cares about solving customer problems",
		Traits: []string{"empathetic", "patient"},
		Style:  "Acknowledge frustration, apologize when appropriate and use positive language.",
	}
	EfficiencyExpert = Persona{
		Name:   "Business Analyst",
		Role:   "a no-nonsense business analyst who values clarity and brevity",
		Traits: []string{"direct"},
		Style:  "Use bullet points and focus on actionable insights. No fluff.",
	}
	AccountManager = Persona{
		Name:   "Account Manager",
		Role:   "a premium account manager for VIP clients",
		Traits: []string{"professional", "reassuring", "proactive"},
	}
)

// AskAs sends request with the persona as the system prompt.
func AskAs(ctx context.Context, l llm.LLM, persona Persona, request string, opts ...llm.GenerateOption) (string, error) {
	prompt := llm.NewPrompt(request, llm.WithSystemPrompt(persona.SystemPrompt()))
	return l.Generate(ctx, prompt, opts...)
}

type PersonaReply struct {
	Persona Persona
	Reply   string
}

// ComparePersonas asks every persona the same request concurrently. Replies
// come back in the order of personas; the first failure cancels the rest.
func ComparePersonas(ctx context.Context, l llm.LLM, personas []Persona, request string, opts ...llm.GenerateOption) ([]PersonaReply, error) {
	replies := make([]PersonaReply, len(personas))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range personas {
		g.Go(func() error {
			reply, err := AskAs(ctx, l, p, request, opts...)
			if err != nil {
				return err
			}
			replies[i] = PersonaReply{Persona: p, Reply: reply}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replies, nil
}
