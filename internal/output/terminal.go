package output

import (
	"fmt"
	"io"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

// Colorize wraps s with an ANSI color code and reset.
func Colorize(color, s string) string { return color + s + ansiReset }

// Bold wraps s with ANSI bold and reset.
func Bold(s string) string { return ansiBold + s + ansiReset }

func sideColor(side persona.Side) string {
	if side == persona.Kinoko {
		return ansiMagenta
	}
	return ansiGreen
}

// Printer renders debate events for a terminal.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Event prints ev in the format matching its kind.
func (p *Printer) Event(ev debate.Event) {
	switch ev.Kind {
	case debate.EventStart:
		p.Start(ev.Topic)
	case debate.EventMessage:
		p.Turn(ev.Turn)
	case debate.EventError:
		p.Error(ev.Err)
	case debate.EventEnd:
		p.End(ev.Outcome)
	}
}

// Start prints the opening banner.
func (p *Printer) Start(topic string) {
	fmt.Fprintf(p.w, "%s\n\n", Colorize(ansiBold+ansiCyan, "=== 🔥 論争開始："+topic+" ==="))
}

// Turn prints one message, labeled with the side and persona.
func (p *Printer) Turn(turn debate.Turn) {
	label := fmt.Sprintf("%s（%s）", turn.Side.Label(), turn.Persona.Label)
	fmt.Fprintf(p.w, "%s %s:\n%s\n\n",
		Colorize(ansiYellow, fmt.Sprintf("[Turn %d]", turn.Index+1)),
		Bold(Colorize(sideColor(turn.Side), label)),
		turn.Message,
	)
}

// Error prints the failure that aborted the run.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "%s %v\n\n", Colorize(ansiBold+ansiRed, "エラー発生:"), err)
}

// End prints the closing banner for outcome.
func (p *Printer) End(outcome debate.Outcome) {
	msg, color := "=== 終了 ===", ansiCyan
	switch outcome {
	case debate.Failed:
		msg, color = "=== 中断（エラー） ===", ansiRed
	case debate.Canceled:
		msg, color = "=== 中断 ===", ansiYellow
	}
	fmt.Fprintln(p.w, Colorize(ansiBold+color, msg))
}
