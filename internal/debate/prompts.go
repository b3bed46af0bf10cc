package debate

import (
	"fmt"
	"strings"

	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

// Directives are the output constraints written into every turn instruction.
type Directives struct {
	// LengthTarget is the approximate reply length in characters.
	LengthTarget int
	// Openers are examples of the belligerent first phrase the reply must start with.
	Openers []string
	// Register describes the expected speaking style.
	Register string
}

// DefaultDirectives returns the constraints the arena ships with.
func DefaultDirectives() Directives {
	return Directives{
		LengthTarget: 100,
		Openers:      []string{"はぁ？", "笑わせるな！", "寝言は寝て言え。"},
		Register:     "くだけた話し言葉（敬語は皮肉として使う場合のみ可）",
	}
}

// OpeningMessage is the first message of a run, addressed to the first speaker.
func OpeningMessage(topic string) string {
	return fmt.Sprintf("議論のテーマは「%s」です。先に仕掛けてください。", topic)
}

// Instruction composes the system instruction for speaker p, attacking from hint.
func (d Directives) Instruction(p persona.Persona, side persona.Side, hint string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(p.Instruction))
	sb.WriteString("\n\n# 今回の指示\n")
	fmt.Fprintf(&sb, "- 立場: %s\n", side.Label())
	fmt.Fprintf(&sb, "- 攻撃の切り口: 「%s」を使って%sを攻撃せよ\n", hint, side.Opponent().Label())
	sb.WriteString("\n# 出力ルール\n")
	fmt.Fprintf(&sb, "- 文字数: %d文字前後\n", d.LengthTarget)
	if len(d.Openers) > 0 {
		fmt.Fprintf(&sb, "- 書き出し: %s のような喧嘩腰の一言で始める\n", quoteAll(d.Openers))
	}
	sb.WriteString("- 根拠: 必ず具体的な理由を一つ挙げる。根拠のない煽りだけの返答は禁止\n")
	fmt.Fprintf(&sb, "- 口調: %s\n", d.Register)
	return sb.String()
}

// Reinforcement is appended to each message sent to the model to restate the length and tone.
func (d Directives) Reinforcement() string {
	return fmt.Sprintf("\n\n（%d文字前後、喧嘩腰で、具体的な根拠を添えて言い返せ）", d.LengthTarget)
}

func quoteAll(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = "「" + s + "」"
	}
	return strings.Join(quoted, "")
}
