package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type stubChat struct {
	content string
	err     error

	lastReq openai.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func adviceTestSearcher() *Searcher {
	store := NewMemoryStore()
	store.Add("p1", []float32{1, 0}, map[string]any{
		"name":        "Aeroshade Kunken",
		"url":         "https://sciconsports.com/aeroshade-kunken",
		"description": "Occhiale da strada con lente ampia",
		"collection":  "aeroshade",
		"price":       179.0,
	})
	store.Add("p2", []float32{0.9, 0.1}, map[string]any{
		"name":       "Aerowing Lamon",
		"url":        "https://sciconsports.com/aerowing-lamon",
		"collection": "aerowing",
		"price":      159.0,
	})
	return NewSearcher(&stubEmbedder{vector: []float32{1, 0}}, store, 5)
}

func TestBuildProductAdviceWithLLM(t *testing.T) {
	chat := &stubChat{content: "Ti consiglio l'Aeroshade Kunken per la strada."}
	a := NewAdvisor(adviceTestSearcher(), chat, "test-model")

	adv := a.BuildProductAdvice(context.Background(), "occhiali per la bici da corsa", "")
	if adv.BotMessage != chat.content {
		t.Errorf("BotMessage = %q, want LLM content", adv.BotMessage)
	}
	if len(adv.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(adv.Products))
	}
	if adv.Products[0].Name != "Aeroshade Kunken" {
		t.Errorf("best product = %q, want Aeroshade Kunken", adv.Products[0].Name)
	}
	if len(adv.FollowUpSuggestions) != 3 {
		t.Errorf("got %d follow-ups, want 3", len(adv.FollowUpSuggestions))
	}
	if adv.Meta.Intent != "product_recommendation" {
		t.Errorf("Meta.Intent = %q", adv.Meta.Intent)
	}
	if adv.Meta.ConfidenceScore != adv.Products[0].Score {
		t.Errorf("ConfidenceScore = %v, want best score %v", adv.Meta.ConfidenceScore, adv.Products[0].Score)
	}
	if adv.Meta.AppliedFilters.Collection != nil {
		t.Error("Collection filter set without a filter in the request")
	}

	if !strings.Contains(chat.lastReq.Messages[1].Content, "Aeroshade Kunken") {
		t.Error("LLM prompt does not carry the candidate products")
	}
}

func TestBuildProductAdviceCollectionFilter(t *testing.T) {
	a := NewAdvisor(adviceTestSearcher(), nil, "")

	adv := a.BuildProductAdvice(context.Background(), "occhiali leggeri", "aerowing")
	if len(adv.Products) != 1 || adv.Products[0].Name != "Aerowing Lamon" {
		t.Fatalf("products = %+v, want only Aerowing Lamon", adv.Products)
	}
	if adv.Meta.AppliedFilters.Collection == nil || *adv.Meta.AppliedFilters.Collection != "aerowing" {
		t.Errorf("AppliedFilters.Collection = %v, want aerowing", adv.Meta.AppliedFilters.Collection)
	}
}

func TestBuildProductAdviceWithoutChat(t *testing.T) {
	a := NewAdvisor(adviceTestSearcher(), nil, "")

	adv := a.BuildProductAdvice(context.Background(), "occhiali per la strada", "")
	if !strings.Contains(adv.BotMessage, "Aeroshade Kunken") {
		t.Errorf("static message does not name the best match: %q", adv.BotMessage)
	}
	if len(adv.FollowUpSuggestions) != 2 {
		t.Errorf("got %d follow-ups, want 2", len(adv.FollowUpSuggestions))
	}
}

func TestBuildProductAdviceChatFailureFallsBack(t *testing.T) {
	a := NewAdvisor(adviceTestSearcher(), &stubChat{err: errors.New("quota")}, "")

	adv := a.BuildProductAdvice(context.Background(), "occhiali per la strada", "")
	if !strings.Contains(adv.BotMessage, "Aeroshade Kunken") {
		t.Errorf("fallback message does not name the best match: %q", adv.BotMessage)
	}
	if len(adv.Products) != 2 {
		t.Errorf("got %d products, want 2 despite chat failure", len(adv.Products))
	}
}

func TestBuildProductAdviceNoResults(t *testing.T) {
	s := NewSearcher(&stubEmbedder{err: errors.New("down")}, NewMemoryStore(), 5)
	a := NewAdvisor(s, &stubChat{content: "unused"}, "")

	adv := a.BuildProductAdvice(context.Background(), "qualcosa di introvabile", "")
	if !strings.Contains(adv.BotMessage, "non riesco a trovare un prodotto") {
		t.Errorf("BotMessage = %q, want the no-results fallback", adv.BotMessage)
	}
	if len(adv.Products) != 0 {
		t.Errorf("got %d products, want 0", len(adv.Products))
	}
	if len(adv.FollowUpSuggestions) != 2 {
		t.Errorf("got %d follow-ups, want 2", len(adv.FollowUpSuggestions))
	}
	if adv.Meta.UserQuery != "qualcosa di introvabile" {
		t.Errorf("Meta.UserQuery = %q", adv.Meta.UserQuery)
	}
}

func TestProductsContextTruncatesDescription(t *testing.T) {
	long := strings.Repeat("è", 400)
	got := productsContext([]Product{{Name: "X", Description: long, Currency: "EUR"}})
	if strings.Contains(got, long) {
		t.Error("description was not truncated")
	}
	if !strings.Contains(got, strings.Repeat("è", 300)+"...") {
		t.Error("truncation does not keep the first 300 characters")
	}
}
