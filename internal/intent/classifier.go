// Package intent classifies a user's opening message into the advisor's
// fixed intent vocabulary via an OpenAI chat completion.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/scicon/advisor/internal/advisor"
)

// AllowedIntents is the classifier's closed label vocabulary. Labels outside
// it are discarded: primary falls back to the default, secondary to none.
var AllowedIntents = []string{
	"valutazione",
	"comparazione",
	"riduzione_rischio",
	"affidabilità_tecnica",
	"upgrade_miglioramento",
	"budget",
	"prescrizione_ottica",
	"info_lenti",
	"info_montatura",
	"post_vendita_supporto",
}

// DefaultIntent is substituted whenever classification fails or produces an
// unknown primary label.
const DefaultIntent = "valutazione"

// ChatCompleter is the slice of the OpenAI client the classifier needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Classifier asks an LLM for a structured intent verdict. It implements
// advisor.Classifier.
type Classifier struct {
	client ChatCompleter
	model  string
}

// New creates a Classifier using the given client and model name.
func New(client ChatCompleter, model string) *Classifier {
	return &Classifier{client: client, model: model}
}

type verdict struct {
	IntentPrimary   string `json:"intent_primary"`
	IntentSecondary string `json:"intent_secondary"`
	Confidence      string `json:"confidence"`
	Reasoning       string `json:"reasoning"`
}

// Classify returns the detected intents for the given text. Errors are
// returned to the caller, which substitutes the documented default — the
// user never sees a classification failure.
func (c *Classifier) Classify(ctx context.Context, text string) (advisor.Classification, error) {
	systemPrompt := "Sei un classificatore di intenti per un assistente di acquisto di occhiali da ciclismo SCICON.\n" +
		fmt.Sprintf("Gli intenti validi sono: %s.\n\n", strings.Join(AllowedIntents, ", ")) +
		"Regole:\n" +
		"- Scegli SEMPRE un intent_primary.\n" +
		"- Scegli un intent_secondary solo se presente, altrimenti null.\n" +
		"- Rispondi SOLO con un JSON con le chiavi: intent_primary, intent_secondary, confidence, reasoning.\n"

	userPrompt := fmt.Sprintf("Testo utente:\n%q\n\nAnalizza il testo e restituisci il JSON richiesto.", text)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return advisor.Classification{}, fmt.Errorf("intent completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return advisor.Classification{}, fmt.Errorf("intent completion returned no choices")
	}

	raw := stripFences(strings.TrimSpace(resp.Choices[0].Message.Content))

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return advisor.Classification{}, fmt.Errorf("parsing intent response: %w", err)
	}

	if !isAllowed(v.IntentPrimary) {
		v.IntentPrimary = DefaultIntent
	}
	if !isAllowed(v.IntentSecondary) {
		v.IntentSecondary = ""
	}

	return advisor.Classification{
		Primary:    v.IntentPrimary,
		Secondary:  v.IntentSecondary,
		Confidence: v.Confidence,
		Reasoning:  v.Reasoning,
	}, nil
}

func isAllowed(label string) bool {
	for _, a := range AllowedIntents {
		if a == label {
			return true
		}
	}
	return false
}

// Static always answers with the default intent. It stands in for the LLM
// classifier when no API key is configured.
type Static struct{}

func (Static) Classify(ctx context.Context, text string) (advisor.Classification, error) {
	return advisor.Classification{Primary: DefaultIntent, Confidence: "bassa"}, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add despite the JSON-only instruction.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.Trim(s, "`")
	if rest, ok := strings.CutPrefix(strings.TrimSpace(s), "json"); ok {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}
