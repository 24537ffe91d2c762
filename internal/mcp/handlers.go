package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/config"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/intent"
	"github.com/tradehand/tradehand/internal/ops"
	"github.com/tradehand/tradehand/internal/task"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	client intent.Client
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, client intent.Client, logger *zap.Logger) *Handlers {
	return &Handlers{db: db, cfg: cfg, client: client, logger: logger}
}

// Request types for each tool

// CaptureSubmitRequest represents the arguments for capture_submit.
type CaptureSubmitRequest struct {
	UserID          string  `json:"user_id"`
	Transcription   string  `json:"transcription"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// TaskListRequest represents the arguments for task_list.
type TaskListRequest struct {
	UserID string `json:"user_id"`
}

// TaskUpdateRequest represents the arguments for task_update.
type TaskUpdateRequest struct {
	UserID       string  `json:"user_id"`
	TaskID       string  `json:"task_id"`
	Status       string  `json:"status"`
	ContactID    *string `json:"contact_id,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	Message      *string `json:"message,omitempty"`
	Timing       *string `json:"timing,omitempty"`
}

// TaskBulkApproveRequest represents the arguments for task_bulk_approve.
type TaskBulkApproveRequest struct {
	UserID  string   `json:"user_id"`
	TaskIDs []string `json:"task_ids"`
}

// ContactSearchRequest represents the arguments for contact_search.
type ContactSearchRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Handler implementations

// HandleCaptureSubmit handles the capture_submit tool call.
func (h *Handlers) HandleCaptureSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureSubmitRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Submit(ctx, h.db, h.cfg, h.client, h.logger, ops.SubmitInput{
		UserID:          input.UserID,
		Transcription:   input.Transcription,
		DurationSeconds: input.DurationSeconds,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTaskList handles the task_list tool call.
func (h *Handlers) HandleTaskList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TaskListRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		UserID: input.UserID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTaskUpdate handles the task_update tool call.
func (h *Handlers) HandleTaskUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TaskUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Transition(ctx, h.db, h.logger, ops.TransitionInput{
		TaskID:       input.TaskID,
		UserID:       input.UserID,
		Status:       task.Status(input.Status),
		ContactID:    input.ContactID,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		Message:      input.Message,
		Timing:       input.Timing,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTaskBulkApprove handles the task_bulk_approve tool call.
func (h *Handlers) HandleTaskBulkApprove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TaskBulkApproveRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.BulkApprove(ctx, h.db, h.logger, ops.BulkApproveInput{
		UserID:  input.UserID,
		TaskIDs: input.TaskIDs,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleContactSearch handles the contact_search tool call.
func (h *Handlers) HandleContactSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContactSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.cfg.CandidateLimit
	}

	result, err := ops.SearchContacts(ctx, h.db, ops.SearchContactsInput{
		UserID: input.UserID,
		Query:  input.Query,
		Limit:  limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
