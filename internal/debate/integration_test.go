package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Started by an init in the genai dependency chain.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// simulatedGenerator answers in character, based on which faction the instruction names.
type simulatedGenerator struct {
	failAt int
	calls  int
}

func (g *simulatedGenerator) Generate(_ context.Context, instruction string, history []gemini.Message, message string) (string, error) {
	n := g.calls
	g.calls++
	if n == g.failAt {
		return "", errors.New("503 service unavailable")
	}
	if len(history) != 2*n {
		return "", fmt.Errorf("history has %d entries at turn %d", len(history), n)
	}
	if strings.Contains(instruction, "立場: "+persona.Takenoko.Label()) {
		return fmt.Sprintf("はぁ？ 第%d手、たけのこのクッキー生地こそ至高", n), nil
	}
	return fmt.Sprintf("笑わせるな！ 第%d手、きのこのクラッカーの歯ごたえを知らんのか", n), nil
}

func TestSimulatedDebateProperties(t *testing.T) {
	for limit := 1; limit <= 6; limit++ {
		for failAt := -1; failAt < limit; failAt++ {
			t.Run(fmt.Sprintf("limit=%d/failAt=%d", limit, failAt), func(t *testing.T) {
				gen := &simulatedGenerator{failAt: failAt}
				e := NewEngine(gen, persona.Default(), Options{TurnLimit: limit})

				events := collect(context.Background(), e.Start("", ""))
				require.NotEmpty(t, events)
				assert.Equal(t, EventStart, events[0].Kind)
				assert.Equal(t, EventEnd, events[len(events)-1].Kind)

				var messages, errs int
				for i, ev := range events {
					switch ev.Kind {
					case EventMessage:
						want := persona.Sides[messages%2]
						assert.Equal(t, want, ev.Turn.Side, "turn %d speaker", messages)
						assert.Equal(t, messages, ev.Turn.Index)
						if want == persona.Takenoko {
							assert.Contains(t, ev.Turn.Message, "たけのこ")
						} else {
							assert.Contains(t, ev.Turn.Message, "きのこ")
						}
						messages++
					case EventError:
						errs++
						assert.Equal(t, len(events)-2, i, "error must be followed only by end")
					}
				}

				assert.LessOrEqual(t, messages, limit)
				end := events[len(events)-1]
				if failAt < 0 {
					assert.Equal(t, limit, messages)
					assert.Zero(t, errs)
					assert.Equal(t, Completed, end.Outcome)
				} else {
					assert.Equal(t, failAt, messages)
					assert.Equal(t, 1, errs)
					assert.Equal(t, Failed, end.Outcome)
				}
			})
		}
	}
}
