package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the slice of the OpenAI client the advice composer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Advice is the structured answer for a free-text product question.
type Advice struct {
	BotMessage          string    `json:"bot_message"`
	Products            []Product `json:"products"`
	FollowUpSuggestions []string  `json:"follow_up_suggestions"`
	Meta                Meta      `json:"meta"`
}

type Meta struct {
	Intent          string         `json:"intent"`
	UserQuery       string         `json:"user_query"`
	Sources         []string       `json:"sources"`
	ConfidenceScore float32        `json:"confidence_score"`
	AppliedFilters  AppliedFilters `json:"applied_filters"`
}

type AppliedFilters struct {
	Collection *string `json:"collection"`
	PriceRange *string `json:"price_range"`
	LensType   *string `json:"lens_type"`
}

// Advisor combines semantic search with an optional LLM to produce
// conversational product advice. A nil chat client degrades to a
// deterministic message built from the best match.
type Advisor struct {
	searcher *Searcher
	chat     ChatCompleter
	model    string
}

func NewAdvisor(searcher *Searcher, chat ChatCompleter, model string) *Advisor {
	if model == "" {
		model = openai.GPT4Dot1Mini
	}
	return &Advisor{searcher: searcher, chat: chat, model: model}
}

// BuildProductAdvice answers a free-text question with matching products and
// a recommendation message. It never returns an error: every failure path
// degrades to a usable fallback answer.
func (a *Advisor) BuildProductAdvice(ctx context.Context, userQuery string, collectionFilter string) Advice {
	products := a.searcher.Search(ctx, userQuery, collectionFilter)
	if len(products) == 0 {
		return fallbackAdvice(userQuery)
	}

	var (
		botMessage string
		followUps  []string
	)
	if a.chat == nil {
		botMessage = staticAdviceMessage(products[0])
		followUps = []string{
			"Vuoi che ti suggerisca anche modelli più adatti al pieno sole?",
			"Vuoi filtrare tra modelli più economici o più premium?",
		}
	} else {
		botMessage = a.llmAdviceMessage(ctx, userQuery, products)
		followUps = []string{
			"Vuoi che ti suggerisca anche modelli più adatti al pieno sole?",
			"Preferisci dare priorità al comfort o alla massima protezione della lente?",
			"Ti interessa confrontare questi modelli anche in base al prezzo?",
		}
	}

	filters := AppliedFilters{}
	if collectionFilter != "" {
		filters.Collection = &collectionFilter
	}

	return Advice{
		BotMessage:          botMessage,
		Products:            products,
		FollowUpSuggestions: followUps,
		Meta: Meta{
			Intent:          "product_recommendation",
			UserQuery:       userQuery,
			Sources:         []string{"products_rag"},
			ConfidenceScore: products[0].Score,
			AppliedFilters:  filters,
		},
	}
}

func (a *Advisor) llmAdviceMessage(ctx context.Context, userQuery string, products []Product) string {
	systemMsg := "Sei un product advisor di Scicon Sports. " +
		"Consigli occhiali da ciclismo in modo chiaro, onesto e concreto, " +
		"senza linguaggio promozionale esagerato. Rispondi in italiano."

	userMsg := fmt.Sprintf(
		"Utente: %s\n\n"+
			"Di seguito hai una lista di prodotti candidati già selezionati (non citarli tutti, "+
			"ma concentrati su quelli più adatti):\n\n%s\n\n"+
			"Compito:\n"+
			"- Suggerisci 1–3 modelli adatti alla richiesta.\n"+
			"- Spiega in modo semplice perché li consigli (condizioni di luce, tipo uso, comfort).\n"+
			"- Usa un tono pratico, come un commesso competente in un negozio di ciclismo.\n",
		userQuery, productsContext(products))

	resp, err := a.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		slog.Warn("product advice completion failed", "error", err)
		return staticAdviceMessage(products[0])
	}
	return resp.Choices[0].Message.Content
}

func staticAdviceMessage(best Product) string {
	brand := best.Brand
	if brand == "" {
		brand = "Scicon Sports"
	}
	return fmt.Sprintf(
		"In base alla tua richiesta, ti suggerisco %s.\n\n"+
			"È un modello di %s pensato per un utilizzo versatile. "+
			"Puoi vedere i dettagli qui: %s.",
		best.Name, brand, best.URL)
}

func productsContext(products []Product) string {
	var b strings.Builder
	for _, p := range products {
		desc := p.Description
		if r := []rune(desc); len(r) > 300 {
			desc = string(r[:300])
		}
		collection := p.Collection
		if collection == "" {
			collection = "n/d"
		}
		brand := p.Brand
		if brand == "" {
			brand = "n/d"
		}
		fmt.Fprintf(&b,
			"- Nome: %s\n  URL: %s\n  Prezzo: %.2f %s\n  Collezione: %s\n  Brand: %s\n  Descrizione: %s...\n\n",
			p.Name, p.URL, p.Price, p.Currency, collection, brand, desc)
	}
	return strings.TrimRight(b.String(), "\n")
}

func fallbackAdvice(userQuery string) Advice {
	return Advice{
		BotMessage: "Al momento non riesco a trovare un prodotto adatto alla tua richiesta. " +
			"Prova a riformulare la domanda indicando:\n" +
			"- il tipo di utilizzo (strada, gravel, sterrato, uso misto)\n" +
			"- le condizioni di luce (piena, variabile, diffusa, notturna)\n" +
			"- eventuali preferenze su lente (fotocromatica, specchiata, più chiara o più scura).",
		Products: []Product{},
		FollowUpSuggestions: []string{
			"Vuoi specificare se usi la bici soprattutto su strada, gravel o sterrato?",
			"Vuoi indicare se preferisci una lente fotocromatica, più chiara o più scura?",
		},
		Meta: Meta{
			Intent:         "product_recommendation",
			UserQuery:      userQuery,
			Sources:        []string{"products_rag"},
			AppliedFilters: AppliedFilters{},
		},
	}
}
