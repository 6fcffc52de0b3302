package techniques

import "errors"

var (
	// ErrUnknownCategory is returned when a classification reply names none
	// of the allowed categories.
	ErrUnknownCategory = errors.New("reply is not one of the allowed categories")
	// ErrNoAction is returned by ParseAction when the text has no Action line.
	ErrNoAction = errors.New("no action found")
	// ErrIterationsExhausted is returned when a ReAct agent reaches its
	// iteration limit without a final answer.
	ErrIterationsExhausted = errors.New("agent stopped without a final answer")
)
