package debate

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

// Options configures an Engine. Zero values fall back to the defaults noted per field.
type Options struct {
	// Topic defaults to DefaultTopic.
	Topic string
	// TurnLimit defaults to DefaultTurnLimit.
	TurnLimit int
	// TurnDelay is the pause between turns. Zero disables it.
	TurnDelay time.Duration
	// TurnTimeout bounds each generation call. Zero means unbounded.
	TurnTimeout time.Duration
	// Hints defaults to DefaultHints().
	Hints []string
	// Picker defaults to RandomPicker.
	Picker HintPicker
	// Directives defaults to DefaultDirectives().
	Directives *Directives
	Logger     *zap.Logger
}

const (
	DefaultTopic     = "「たけのこの里」と「きのこの山」どっちが偉大か？"
	DefaultTurnLimit = 6
)

// Engine starts debate runs between the personas of a Store.
type Engine struct {
	gen        Generator
	personas   *persona.Store
	topic      string
	turnLimit  int
	turnDelay  time.Duration
	timeout    time.Duration
	hints      []string
	picker     HintPicker
	directives Directives
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an Engine.
func NewEngine(gen Generator, personas *persona.Store, opts Options) *Engine {
	e := &Engine{
		gen:       gen,
		personas:  personas,
		topic:     opts.Topic,
		turnLimit: opts.TurnLimit,
		turnDelay: opts.TurnDelay,
		timeout:   opts.TurnTimeout,
		hints:     opts.Hints,
		picker:    opts.Picker,
		logger:    logging.OrNop(opts.Logger),
		sleep:     sleepContext,
	}
	if e.topic == "" {
		e.topic = DefaultTopic
	}
	if e.turnLimit <= 0 {
		e.turnLimit = DefaultTurnLimit
	}
	if len(e.hints) == 0 {
		e.hints = DefaultHints()
	}
	if e.picker == nil {
		e.picker = RandomPicker{}
	}
	if opts.Directives != nil {
		e.directives = *opts.Directives
	} else {
		e.directives = DefaultDirectives()
	}
	return e
}

// Topic returns the topic runs are started with.
func (e *Engine) Topic() string { return e.topic }

// TurnLimit returns the number of turns in a complete run.
func (e *Engine) TurnLimit() int { return e.turnLimit }

// Start prepares a run between the given personas. Empty or unknown ids fall
// back to each side's first persona. Nothing is generated until Events is ranged over.
func (e *Engine) Start(takenokoID, kinokoID string) *Run {
	// Both sides are guaranteed by persona.New, so Resolve cannot fail here.
	a, _ := e.personas.Resolve(persona.Takenoko, takenokoID)
	b, _ := e.personas.Resolve(persona.Kinoko, kinokoID)

	id := uuid.NewString()
	return &Run{
		ID:      id,
		engine:  e,
		matchup: Matchup{Takenoko: a, Kinoko: b},
		speaker: persona.Sides[0],
		message: OpeningMessage(e.topic),
		logger: e.logger.With(
			zap.String("run_id", id),
			zap.String("takenoko", a.ID),
			zap.String("kinoko", b.ID),
		),
	}
}

// Run is the state of one debate. It is owned by a single consumer and its
// event sequence can be ranged over only once.
type Run struct {
	ID string

	engine   *Engine
	matchup  Matchup
	history  []gemini.Message
	speaker  persona.Side
	message  string
	index    int
	consumed bool
	logger   *zap.Logger
}

// Matchup returns the personas of the run.
func (r *Run) Matchup() Matchup { return r.matchup }

// History returns a copy of the conversation so far.
func (r *Run) History() []gemini.Message { return slices.Clone(r.history) }

// Events returns the run's event sequence: one start event, up to TurnLimit
// message events in turn order, at most one error event, then one end event.
// Canceling ctx stops generation and any pending delay; the sequence then ends
// with Outcome Canceled. Breaking out of the range loop stops the run without
// an end event. A second range yields nothing.
func (r *Run) Events(ctx context.Context) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		if r.consumed {
			return
		}
		r.consumed = true

		r.logger.Info("debate started", zap.Int("turn_limit", r.engine.turnLimit))
		if !yield(Event{Kind: EventStart, Topic: r.engine.topic}) {
			return
		}
		outcome, ok := r.play(ctx, yield)
		if !ok {
			r.logger.Info("debate abandoned by consumer", zap.Int("turns", r.index))
			return
		}
		r.logger.Info("debate finished", zap.String("outcome", string(outcome)), zap.Int("turns", r.index))
		yield(Event{Kind: EventEnd, Outcome: outcome})
	}
}

// play runs the turns. ok is false when the consumer stopped early.
func (r *Run) play(ctx context.Context, yield func(Event) bool) (outcome Outcome, ok bool) {
	for r.index < r.engine.turnLimit {
		if r.index > 0 {
			if err := r.engine.sleep(ctx, r.engine.turnDelay); err != nil {
				return Canceled, true
			}
		}
		if ctx.Err() != nil {
			return Canceled, true
		}

		turn, err := r.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Canceled, true
			}
			r.logger.Warn("turn failed", zap.Int("turn", r.index), zap.Error(err))
			if !yield(Event{Kind: EventError, Err: err}) {
				return Failed, false
			}
			return Failed, true
		}
		if !yield(Event{Kind: EventMessage, Turn: turn}) {
			return Completed, false
		}
	}
	return Completed, true
}

// step generates one turn and advances the run state.
func (r *Run) step(ctx context.Context) (Turn, error) {
	e := r.engine
	speaker := r.matchup.For(r.speaker)
	hint := e.picker.Pick(e.hints)
	instruction := e.directives.Instruction(speaker, r.speaker, hint)

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	reply, err := e.gen.Generate(callCtx, instruction, r.History(), r.message+e.directives.Reinforcement())
	if err != nil {
		return Turn{}, &TurnError{Turn: r.index, Side: r.speaker, Err: err}
	}

	r.history = append(r.history,
		gemini.Message{Role: gemini.RoleUser, Text: r.message},
		gemini.Message{Role: gemini.RoleModel, Text: reply},
	)
	turn := Turn{
		Index:   r.index,
		Side:    r.speaker,
		Persona: speaker,
		Message: reply,
	}
	r.logger.Debug("turn generated",
		zap.Int("turn", r.index),
		zap.String("side", string(r.speaker)),
		zap.String("hint", hint),
		zap.Int("chars", len([]rune(reply))),
	)

	r.message = reply
	r.speaker = r.speaker.Opponent()
	r.index++
	return turn, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
