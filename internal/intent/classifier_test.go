package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type mockChat struct {
	resp openai.ChatCompletionResponse
	err  error

	lastReq openai.ChatCompletionRequest
}

func (m *mockChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestClassifyParsesVerdict(t *testing.T) {
	chat := &mockChat{resp: chatResponse(`{
		"intent_primary": "prescrizione_ottica",
		"intent_secondary": "budget",
		"confidence": "alta",
		"reasoning": "menziona lenti graduate e prezzo"
	}`)}
	c := New(chat, "test-model")

	cls, err := c.Classify(context.Background(), "porto occhiali da vista, quanto costa?")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cls.Primary != "prescrizione_ottica" {
		t.Errorf("Primary = %q, want prescrizione_ottica", cls.Primary)
	}
	if cls.Secondary != "budget" {
		t.Errorf("Secondary = %q, want budget", cls.Secondary)
	}
	if cls.Confidence != "alta" {
		t.Errorf("Confidence = %q, want alta", cls.Confidence)
	}
	if cls.Reasoning == "" {
		t.Error("Reasoning is empty")
	}

	if chat.lastReq.Model != "test-model" {
		t.Errorf("request model = %q, want test-model", chat.lastReq.Model)
	}
	if len(chat.lastReq.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(chat.lastReq.Messages))
	}
	if !strings.Contains(chat.lastReq.Messages[0].Content, "intent_primary") {
		t.Error("system prompt does not describe the expected JSON keys")
	}
	if !strings.Contains(chat.lastReq.Messages[1].Content, "porto occhiali da vista") {
		t.Error("user prompt does not carry the user text")
	}
}

func TestClassifyStripsCodeFences(t *testing.T) {
	chat := &mockChat{resp: chatResponse("```json\n{\"intent_primary\": \"comparazione\", \"confidence\": \"media\"}\n```")}
	c := New(chat, "test-model")

	cls, err := c.Classify(context.Background(), "meglio aeroshade o aerowing?")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cls.Primary != "comparazione" {
		t.Errorf("Primary = %q, want comparazione", cls.Primary)
	}
	if cls.Secondary != "" {
		t.Errorf("Secondary = %q, want empty", cls.Secondary)
	}
}

func TestClassifyDiscardsUnknownLabels(t *testing.T) {
	chat := &mockChat{resp: chatResponse(`{
		"intent_primary": "vendita_auto",
		"intent_secondary": "meteo",
		"confidence": "alta"
	}`)}
	c := New(chat, "test-model")

	cls, err := c.Classify(context.Background(), "ciao")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cls.Primary != DefaultIntent {
		t.Errorf("Primary = %q, want default %q", cls.Primary, DefaultIntent)
	}
	if cls.Secondary != "" {
		t.Errorf("Secondary = %q, want empty", cls.Secondary)
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name string
		chat *mockChat
	}{
		{"client error", &mockChat{err: errors.New("boom")}},
		{"no choices", &mockChat{resp: openai.ChatCompletionResponse{}}},
		{"not json", &mockChat{resp: chatResponse("certamente! ecco la classificazione")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.chat, "test-model")
			if _, err := c.Classify(context.Background(), "ciao"); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestStaticClassifier(t *testing.T) {
	cls, err := Static{}.Classify(context.Background(), "qualsiasi testo")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cls.Primary != DefaultIntent {
		t.Errorf("Primary = %q, want %q", cls.Primary, DefaultIntent)
	}
	if cls.Confidence != "bassa" {
		t.Errorf("Confidence = %q, want bassa", cls.Confidence)
	}
}
