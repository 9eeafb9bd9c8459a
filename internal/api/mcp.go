package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scicon/advisor/internal/advisor"
)

// MCPDeps holds dependencies for the MCP tool server.
type MCPDeps struct {
	Advisor *advisor.Service
	Chat    ProductAdvisor // optional; if nil, search_products reports unavailable
}

// NewMCPServer creates an MCP server exposing the advisor as tools, so MCP
// clients can drive the guided conversation and the semantic product search.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"scicon-advisor",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("Conversational advisor for SCICON cycling eyewear: guided product recommendation, RX configuration, and spare-parts support."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("start_advisor",
			mcp.WithDescription("Open a new advisor session from a free-text request. Returns the session id and the first question to relay to the user."),
			mcp.WithString("query", mcp.Description("The user's opening message, in Italian"), mcp.Required()),
		),
		mcpStartAdvisor(deps),
	)

	s.AddTool(
		mcp.NewTool("advisor_answer",
			mcp.WithDescription("Submit the user's answer to the advisor's last question. Returns the next question or the final recommendation/support outcome."),
			mcp.WithString("session_id", mcp.Description("Session id returned by start_advisor"), mcp.Required()),
			mcp.WithString("answer", mcp.Description("The user's answer, verbatim"), mcp.Required()),
		),
		mcpAdvisorAnswer(deps),
	)

	s.AddTool(
		mcp.NewTool("search_products",
			mcp.WithDescription("Semantically search the SCICON product catalog and return advice with matching products."),
			mcp.WithString("query", mcp.Description("Free-text product question"), mcp.Required()),
			mcp.WithString("collection", mcp.Description("Optional collection filter")),
		),
		mcpSearchProducts(deps),
	)

	return s
}

func mcpStartAdvisor(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		res, err := deps.Advisor.StartSession(ctx, query)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to start session: %v", err)), nil
		}

		b, err := json.Marshal(startResponse{
			SessionID:        res.SessionID,
			IntentPrimary:    res.IntentPrimary,
			IntentSecondary:  res.IntentSecondary,
			AssistantMessage: res.AssistantMessage,
			NextQuestion:     res.NextQuestion,
			NextQuestionID:   string(res.NextQuestionID),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAdvisorAnswer(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		answer, err := req.RequireString("answer")
		if err != nil {
			return mcpError("answer is required"), nil
		}

		res, err := deps.Advisor.ProcessAnswer(ctx, sessionID, answer)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to process answer: %v", err)), nil
		}

		b, err := json.Marshal(stepResultJSON(res))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSearchProducts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		if deps.Chat == nil {
			return mcpError("product search is not configured"), nil
		}

		collection := req.GetString("collection", "")

		advice := deps.Chat.BuildProductAdvice(ctx, query, collection)
		b, err := json.Marshal(advice)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal advice: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
