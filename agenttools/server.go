// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package agenttools exposes the allocation and messaging operations as MCP
// tools, so conversational agents can drive the same flows as the HTTP API.
package agenttools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/models"
	"github.com/danielhkuo/mqr-hub/mqr"
)

// Allocator draws study arms.
type Allocator interface {
	Allocate(ctx context.Context, req models.RandomStrataArmRequest) (models.RandomStrataArmResponse, error)
}

// Messages resolves weekly messages and FAQs.
type Messages interface {
	Next(ctx context.Context, req models.NextMessageRequest) (models.NextMessageResponse, error)
	FAQMessage(ctx context.Context, req models.FAQRequest) (models.FAQResponse, error)
	Menu(ctx context.Context, req models.FAQMenuRequest) (models.FAQMenuResponse, error)
}

// NewServer creates an MCPServer with the mqr tools registered.
func NewServer(version string, alloc Allocator, msgs Messages) *server.MCPServer {
	srv := server.NewMCPServer(
		"mqr-hub",
		version,
		server.WithToolCapabilities(true),
	)

	srv.AddTool(randomArmTool(), randomArmHandler(alloc))
	srv.AddTool(nextMessageTool(), nextMessageHandler(msgs))
	srv.AddTool(faqMessageTool(), faqMessageHandler(msgs))
	srv.AddTool(faqMenuTool(), faqMenuHandler(msgs))

	return srv
}

// --- mqr_random_arm ---

func randomArmTool() mcp.Tool {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"facility_code":           map[string]string{"type": "string", "description": "Clinic facility code"},
			"estimated_delivery_date": map[string]string{"type": "string", "description": "Estimated delivery date, YYYY-MM-DD"},
			"mom_age":                 map[string]string{"type": "integer", "description": "Mother's age in years"},
		},
		"required": []string{"facility_code", "estimated_delivery_date", "mom_age"},
	})
	return mcp.NewToolWithRawSchema("mqr_random_arm", "Allocate a study arm for a participant's stratum", schema)
}

func randomArmHandler(alloc Allocator) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in models.RandomStrataArmRequest
		if err := decodeArgs(req, &in); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result("mqr_random_arm", func() (any, error) { return alloc.Allocate(ctx, in) })
	}
}

// --- mqr_next_message ---

func nextMessageTool() mcp.Tool {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"contact_uuid":      map[string]string{"type": "string", "description": "Contact UUID"},
			"run_uuid":          map[string]string{"type": "string", "description": "Flow run UUID"},
			"edd_or_dob_date":   map[string]string{"type": "string", "description": "EDD (pre) or baby's date of birth (post), YYYY-MM-DD"},
			"subscription_type": map[string]string{"type": "string", "description": "One of: pre, post"},
			"arm":               map[string]string{"type": "string", "description": "Study arm"},
			"mom_name":          map[string]string{"type": "string", "description": "Name substituted into non-template messages"},
			"sequence":          map[string]string{"type": "string", "description": "Optional message sequence letter"},
		},
		"required": []string{"contact_uuid", "run_uuid", "edd_or_dob_date", "subscription_type", "arm", "mom_name"},
	})
	return mcp.NewToolWithRawSchema("mqr_next_message", "Resolve this week's study message for a participant", schema)
}

func nextMessageHandler(msgs Messages) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in models.NextMessageRequest
		if err := decodeArgs(req, &in); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result("mqr_next_message", func() (any, error) { return msgs.Next(ctx, in) })
	}
}

// --- mqr_faq_message ---

func faqMessageTool() mcp.Tool {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"contact_uuid": map[string]string{"type": "string", "description": "Contact UUID"},
			"run_uuid":     map[string]string{"type": "string", "description": "Flow run UUID"},
			"tag":          map[string]string{"type": "string", "description": "Weekly message tag the FAQ belongs to"},
			"faq_number":   map[string]string{"type": "integer", "description": "FAQ number under the tag"},
			"viewed":       map[string]any{"type": "array", "items": map[string]string{"type": "string"}, "description": "FAQ tags already shown"},
		},
		"required": []string{"contact_uuid", "run_uuid", "tag", "faq_number"},
	})
	return mcp.NewToolWithRawSchema("mqr_faq_message", "Resolve an FAQ and the menu of FAQs not yet viewed", schema)
}

func faqMessageHandler(msgs Messages) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in models.FAQRequest
		if err := decodeArgs(req, &in); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result("mqr_faq_message", func() (any, error) { return msgs.FAQMessage(ctx, in) })
	}
}

// --- mqr_faq_menu ---

func faqMenuTool() mcp.Tool {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tag":         map[string]string{"type": "string", "description": "Weekly message tag"},
			"menu_offset": map[string]string{"type": "integer", "description": "Number the first entry offset+1"},
		},
		"required": []string{"tag"},
	})
	return mcp.NewToolWithRawSchema("mqr_faq_menu", "List the FAQ topics for a message tag", schema)
}

func faqMenuHandler(msgs Messages) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in models.FAQMenuRequest
		if err := decodeArgs(req, &in); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result("mqr_faq_menu", func() (any, error) { return msgs.Menu(ctx, in) })
	}
}

// decodeArgs maps the tool arguments onto a request struct through its
// JSON tags.
func decodeArgs(req mcp.CallToolRequest, v any) error {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// result runs call and renders its value as JSON text. Domain failures are
// tool errors the agent can read; the protocol call itself succeeds.
func result(tool string, call func() (any, error)) (*mcp.CallToolResult, error) {
	out, err := call()
	if err != nil {
		var (
			contentErr *mqr.ContentError
			validErr   *middleware.ValidationError
		)
		if !errors.As(err, &contentErr) && !errors.As(err, &validErr) {
			slog.Error("mcp tool failed", "tool", tool, "error", err)
		}
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", tool, err)), nil
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%s: encode result: %w", tool, err)
	}
	return mcp.NewToolResultText(string(body)), nil
}
