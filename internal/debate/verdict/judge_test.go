package verdict

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

// mockCompleter returns responses in order, repeating the last one.
type mockCompleter struct {
	responses []string
	err       error
	requests  []gemini.ChatRequest
}

func (m *mockCompleter) Chat(_ context.Context, req gemini.ChatRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	i := min(len(m.requests)-1, len(m.responses)-1)
	return m.responses[i], nil
}

func sampleLines() []Line {
	return []Line{
		{Side: persona.Takenoko, Text: "はぁ？ クッキー生地の一体感を知らんのか"},
		{Side: persona.Kinoko, Text: "笑わせるな！ クラッカーの歯ごたえこそ正義"},
	}
}

func TestJudgeDecides(t *testing.T) {
	llm := &mockCompleter{responses: []string{`{"winner": "kinoko", "reason": "具体性で勝った"}`}}
	judge := NewJudge(llm)

	result, err := judge.Decide(context.Background(), "topic", sampleLines())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != persona.Kinoko {
		t.Errorf("Winner = %q, want %q", result.Winner, persona.Kinoko)
	}
	if result.Reason != "具体性で勝った" {
		t.Errorf("Reason = %q", result.Reason)
	}

	req := llm.requests[0]
	if req.ResponseMIMEType != gemini.MIMEJSON {
		t.Errorf("ResponseMIMEType = %q, want %q", req.ResponseMIMEType, gemini.MIMEJSON)
	}
	if !strings.Contains(req.Message, "テーマ: topic") || !strings.Contains(req.Message, "クラッカーの歯ごたえ") {
		t.Errorf("transcript not sent: %q", req.Message)
	}
	if !strings.Contains(req.Message, persona.Takenoko.Label()+": ") {
		t.Errorf("lines should be labelled by side: %q", req.Message)
	}
}

func TestJudgeExtractsJSONFromMarkdownCodeBlock(t *testing.T) {
	response := "判定です:\n```json\n{\"winner\": \"takenoko\", \"reason\": \"勢い\"}\n```\n以上"
	judge := NewJudge(&mockCompleter{responses: []string{response}})

	result, err := judge.Decide(context.Background(), "topic", sampleLines())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != persona.Takenoko {
		t.Errorf("Winner = %q, want %q", result.Winner, persona.Takenoko)
	}
}

func TestJudgeExtractsJSONFromPreambleText(t *testing.T) {
	response := "結果は次の通り {\"winner\": \" KINOKO \", \"reason\": \"冷静\"} でした"
	judge := NewJudge(&mockCompleter{responses: []string{response}})

	result, err := judge.Decide(context.Background(), "topic", sampleLines())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != persona.Kinoko {
		t.Errorf("Winner = %q, want %q", result.Winner, persona.Kinoko)
	}
}

func TestJudgeRetriesOnMalformedJSON(t *testing.T) {
	llm := &mockCompleter{responses: []string{
		"I can't produce valid JSON sorry",
		`{"winner": "ramen", "reason": "?"}`,
		`{"winner": "takenoko", "reason": "三度目の正直"}`,
	}}
	judge := NewJudge(llm)

	result, err := judge.Decide(context.Background(), "topic", sampleLines())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != persona.Takenoko {
		t.Errorf("Winner = %q, want %q", result.Winner, persona.Takenoko)
	}
	if len(llm.requests) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(llm.requests))
	}
	if !strings.Contains(llm.requests[1].Message, "有効なJSONではありません") {
		t.Error("retry should ask for JSON again")
	}
}

func TestJudgeGivesUpAfterMaxRetries(t *testing.T) {
	llm := &mockCompleter{responses: []string{"nope"}}
	judge := NewJudge(llm)

	_, err := judge.Decide(context.Background(), "topic", sampleLines())
	if !errors.Is(err, ErrUnparsable) {
		t.Fatalf("expected ErrUnparsable, got %v", err)
	}
	if len(llm.requests) != maxJudgeRetries {
		t.Errorf("expected %d attempts, got %d", maxJudgeRetries, len(llm.requests))
	}
}

func TestJudgePropagatesLLMError(t *testing.T) {
	llm := &mockCompleter{err: errors.New("api down")}
	_, err := NewJudge(llm).Decide(context.Background(), "topic", sampleLines())
	if err == nil || !strings.Contains(err.Error(), "api down") {
		t.Fatalf("expected wrapped LLM error, got %v", err)
	}
}

func TestJudgeRejectsEmptyTranscript(t *testing.T) {
	llm := &mockCompleter{responses: []string{"{}"}}
	_, err := NewJudge(llm).Decide(context.Background(), "topic", nil)
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
	if len(llm.requests) != 0 {
		t.Error("no request should be sent for an empty transcript")
	}
}

func TestJudgeRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewJudge(&mockCompleter{responses: []string{"{}"}}).Decide(ctx, "topic", sampleLines())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
