package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scicon/advisor/internal/advisor"
	"github.com/scicon/advisor/internal/catalog"
	"github.com/scicon/advisor/internal/search"
	"github.com/scicon/advisor/internal/spareparts"
)

const maxRequestBodySize = 1 << 20 // 1MB

// ProductAdvisor abstracts the semantic product-advice composer.
type ProductAdvisor interface {
	BuildProductAdvice(ctx context.Context, userQuery, collectionFilter string) search.Advice
}

// PartsReloader abstracts the spare-parts cache reload for the admin endpoint.
type PartsReloader interface {
	Reload() (*spareparts.DB, error)
}

// AppDeps holds everything the HTTP layer needs.
type AppDeps struct {
	Advisor *advisor.Service
	Chat    ProductAdvisor // optional; if nil, /chat/products returns 503
	Parts   PartsReloader  // optional; if nil, the reload endpoint is not mounted
	Token   string         // optional; if empty, admin routes are not mounted
}

// NewHandler builds the full HTTP routing tree.
func NewHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/advisor", func(r chi.Router) {
		r.Get("/health", handleAdvisorHealth)
		r.Post("/start", handleAdvisorStart(deps))
		r.Post("/answer", handleAdvisorAnswer(deps))
	})

	r.Post("/chat/products", handleChatProducts(deps))

	if deps.Token != "" && deps.Parts != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(BearerAuth(deps.Token))
			r.Post("/spareparts/reload", handlePartsReload(deps))
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleAdvisorHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":      true,
		"service": "advisor_api",
	})
}

type startRequest struct {
	Query string `json:"query"`
}

type startResponse struct {
	SessionID        string `json:"session_id"`
	IntentPrimary    string `json:"intent_primary"`
	IntentSecondary  string `json:"intent_secondary,omitempty"`
	AssistantMessage string `json:"assistant_message"`
	NextQuestion     string `json:"next_question"`
	NextQuestionID   string `json:"next_question_id"`
}

func handleAdvisorStart(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}

		res, err := deps.Advisor.StartSession(r.Context(), req.Query)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "start_failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(startResponse{
			SessionID:        res.SessionID,
			IntentPrimary:    res.IntentPrimary,
			IntentSecondary:  res.IntentSecondary,
			AssistantMessage: res.AssistantMessage,
			NextQuestion:     res.NextQuestion,
			NextQuestionID:   string(res.NextQuestionID),
		})
	}
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type answerResponse struct {
	SessionID        string              `json:"session_id"`
	AssistantMessage string              `json:"assistant_message"`
	NextQuestion     string              `json:"next_question,omitempty"`
	NextQuestionID   string              `json:"next_question_id,omitempty"`
	FlowType         string              `json:"flow_type,omitempty"`
	Recommendation   *recommendationJSON `json:"recommendation,omitempty"`
	Support          *supportJSON        `json:"support,omitempty"`
	Done             bool                `json:"done"`
}

type recommendationJSON struct {
	FlowType         string       `json:"flow_type"`
	PrimaryProduct   *productJSON `json:"primary_product"`
	SecondaryProduct *productJSON `json:"secondary_product"`
	Explanation      string       `json:"explanation"`
}

type productJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	ShortReason string `json:"short_reason"`
}

type supportJSON struct {
	Model    string   `json:"model"`
	Issue    string   `json:"issue"`
	Priority string   `json:"priority"`
	Links    []string `json:"links"`
	Resolved bool     `json:"resolved"`
}

func handleAdvisorAnswer(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}
		if req.Answer == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "answer is required")
			return
		}

		res, err := deps.Advisor.ProcessAnswer(r.Context(), req.SessionID, req.Answer)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "answer_failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stepResultJSON(res))
	}
}

func stepResultJSON(res advisor.StepResult) answerResponse {
	out := answerResponse{
		SessionID:        res.SessionID,
		AssistantMessage: res.AssistantMessage,
		NextQuestion:     res.NextQuestion,
		NextQuestionID:   string(res.NextQuestionID),
		Done:             res.Terminal(),
	}
	if res.Recommendation != nil {
		out.FlowType = string(res.Recommendation.Flow)
		out.Recommendation = &recommendationJSON{
			FlowType:         string(res.Recommendation.Flow),
			PrimaryProduct:   toProductJSON(res.Recommendation.Primary),
			SecondaryProduct: toProductJSON(res.Recommendation.Secondary),
			Explanation:      res.Recommendation.Explanation,
		}
	}
	if res.Support != nil {
		out.FlowType = "support_flow"
		out.Support = &supportJSON{
			Model:    res.Support.Model,
			Issue:    res.Support.Issue,
			Priority: res.Support.Priority,
			Links:    res.Support.Links,
			Resolved: res.Support.Resolved,
		}
	}
	return out
}

func toProductJSON(e *catalog.Entry) *productJSON {
	if e == nil {
		return nil
	}
	return &productJSON{
		ID:          e.ID,
		Name:        e.Name,
		Type:        string(e.Type),
		ShortReason: e.ShortReason,
	}
}

type chatProductsRequest struct {
	Message    string `json:"message"`
	Collection string `json:"collection,omitempty"`
}

func handleChatProducts(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Chat == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "product search is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatProductsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		advice := deps.Chat.BuildProductAdvice(r.Context(), req.Message, req.Collection)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(advice)
	}
}

func handlePartsReload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db, err := deps.Parts.Reload()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to reload spare parts: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "reloaded",
			"models": db.Len(),
		})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
