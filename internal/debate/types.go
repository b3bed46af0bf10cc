package debate

import (
	"context"
	"fmt"

	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

// Generator produces the next model message. It is satisfied by *gemini.Client
// and mocked in tests.
type Generator interface {
	Generate(ctx context.Context, instruction string, history []gemini.Message, message string) (string, error)
}

// Matchup is the persona fielded by each side for one run.
type Matchup struct {
	Takenoko persona.Persona
	Kinoko   persona.Persona
}

// For returns the persona speaking for side.
func (m Matchup) For(side persona.Side) persona.Persona {
	if side == persona.Kinoko {
		return m.Kinoko
	}
	return m.Takenoko
}

// Turn is one message produced during a run. It is never modified after it is emitted.
type Turn struct {
	Index   int
	Side    persona.Side
	Persona persona.Persona
	Message string
}

// EventKind identifies what an Event carries.
type EventKind string

const (
	EventStart   EventKind = "start"
	EventMessage EventKind = "message"
	EventError   EventKind = "error"
	EventEnd     EventKind = "end"
)

// Outcome is how a run ended.
type Outcome string

const (
	Completed Outcome = "completed"
	Failed    Outcome = "failed"
	Canceled  Outcome = "canceled"
)

// Event is one item of a run's event sequence.
// Start carries Topic, Message carries Turn, Error carries Err, End carries Outcome.
type Event struct {
	Kind    EventKind
	Topic   string
	Turn    Turn
	Err     error
	Outcome Outcome
}

// TurnError reports a generation failure that aborted a run.
type TurnError struct {
	Turn int
	Side persona.Side
	Err  error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("debate: turn %d (%s): %v", e.Turn, e.Side, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }
