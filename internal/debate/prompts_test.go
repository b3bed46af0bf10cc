package debate

import (
	"strings"
	"testing"

	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

func TestInstructionEncodesDirectives(t *testing.T) {
	d := Directives{LengthTarget: 80, Openers: []string{"はぁ？"}, Register: "タメ口"}
	p := persona.Persona{ID: "x", Instruction: "  あなたは職人です。  "}

	got := d.Instruction(p, persona.Kinoko, "食感")

	for _, want := range []string{
		"あなたは職人です。",
		"立場: " + persona.Kinoko.Label(),
		"「食感」を使って" + persona.Takenoko.Label() + "を攻撃せよ",
		"80文字前後",
		"「はぁ？」",
		"根拠",
		"口調: タメ口",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "あなたは職人です。") {
		t.Error("persona text should lead the instruction")
	}
}

func TestInstructionWithoutOpeners(t *testing.T) {
	d := Directives{LengthTarget: 50, Register: "普通"}
	got := d.Instruction(persona.Persona{Instruction: "p"}, persona.Takenoko, "h")
	if strings.Contains(got, "書き出し") {
		t.Error("opening directive should be omitted when no openers are configured")
	}
}

func TestReinforcementRestatesLength(t *testing.T) {
	got := DefaultDirectives().Reinforcement()
	if !strings.Contains(got, "100文字前後") {
		t.Errorf("reinforcement = %q", got)
	}
	if !strings.HasPrefix(got, "\n\n") {
		t.Error("reinforcement should be separated from the message")
	}
}

func TestOpeningMessageNamesTopic(t *testing.T) {
	got := OpeningMessage("犬か猫か")
	if !strings.Contains(got, "「犬か猫か」") || !strings.Contains(got, "先に仕掛けて") {
		t.Errorf("opening = %q", got)
	}
}

func TestDefaultHintsCoverEveryAngle(t *testing.T) {
	hints := DefaultHints()
	if len(hints) < 4 {
		t.Fatalf("expected at least one hint per category, got %d", len(hints))
	}
	seen := map[string]bool{}
	for _, h := range hints {
		if seen[h] {
			t.Errorf("duplicate hint %q", h)
		}
		seen[h] = true
	}
}
