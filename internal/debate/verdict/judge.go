// Package verdict asks the model which side argued better in a finished debate.
package verdict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

const maxJudgeRetries = 3

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

var (
	// ErrEmptyTranscript is returned when there is nothing to judge.
	ErrEmptyTranscript = errors.New("verdict: empty transcript")
	// ErrUnparsable is returned when the model never produced a usable verdict.
	ErrUnparsable = errors.New("verdict: model did not return a valid verdict")
)

// Completer sends one chat request. It is satisfied by *gemini.Client.
type Completer interface {
	Chat(ctx context.Context, req gemini.ChatRequest) (string, error)
}

// Line is one turn of the transcript being judged.
type Line struct {
	Side persona.Side `json:"speakerClass"`
	Text string       `json:"text"`
}

// Result is the judge's decision.
type Result struct {
	Winner persona.Side `json:"winner"`
	Reason string       `json:"reason"`
}

// Judge decides debates using an LLM.
type Judge struct {
	llm Completer
}

// NewJudge creates a Judge.
func NewJudge(llm Completer) *Judge {
	return &Judge{llm: llm}
}

const systemPrompt = `あなたは公平な審査員です。「たけのこの里」派と「きのこの山」派の論争を読み、より説得力のあった側を一つだけ選んでください。
次の形式のJSONだけを返してください。説明文やマークダウンは禁止です。
{"winner": "takenoko" または "kinoko", "reason": "判定理由を2〜3文で"}`

// Decide judges lines argued over topic.
func (j *Judge) Decide(ctx context.Context, topic string, lines []Line) (*Result, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "テーマ: %s\n\n", topic)
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s: %s\n", l.Side.Label(), l.Text)
	}
	transcript := sb.String()

	for attempt := range maxJudgeRetries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("verdict: %w", err)
		}

		msg := transcript
		if attempt > 0 {
			msg += "\n前回の返答は有効なJSONではありませんでした。JSONオブジェクトだけを返してください。"
		}

		raw, err := j.llm.Chat(ctx, gemini.ChatRequest{
			SystemInstruction: systemPrompt,
			Message:           msg,
			ResponseMIMEType:  gemini.MIMEJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("verdict: %w", err)
		}

		if result, ok := parseVerdictJSON(raw); ok {
			return result, nil
		}
	}

	return nil, ErrUnparsable
}

// parseVerdictJSON extracts a Result from raw model output, tolerating code fences and prose.
func parseVerdictJSON(raw string) (*Result, bool) {
	candidates := []string{strings.TrimSpace(raw)}
	if matches := codeBlockRe.FindStringSubmatch(raw); len(matches) > 1 {
		candidates = append(candidates, strings.TrimSpace(matches[1]))
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		candidates = append(candidates, raw[start:end+1])
	}

	for _, c := range candidates {
		var result Result
		if err := json.Unmarshal([]byte(c), &result); err != nil {
			continue
		}
		result.Winner = persona.Side(strings.ToLower(strings.TrimSpace(string(result.Winner))))
		if !result.Winner.Valid() {
			continue
		}
		return &result, true
	}
	return nil, false
}
