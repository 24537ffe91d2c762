package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Every tool takes user_id explicitly: the stdio
// transport carries no auth, so the operator names the owner per call.

var captureSubmitToolDef = mcp.NewTool("capture_submit",
	mcp.WithDescription("Submit a transcribed voice note and generate pending tasks from it."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Owner of the capture and generated tasks."),
	),
	mcp.WithString("transcription",
		mcp.Required(),
		mcp.Description("Transcribed voice note text."),
	),
	mcp.WithNumber("duration_seconds",
		mcp.Description("Length of the original recording in seconds."),
	),
)

var taskListToolDef = mcp.NewTool("task_list",
	mcp.WithDescription("List the owner's tasks split into active and archived, with stats."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Owner whose tasks to list."),
	),
)

var taskUpdateToolDef = mcp.NewTool("task_update",
	mcp.WithDescription("Approve or skip a pending task, optionally overriding contact, message, or timing."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Owner of the task."),
	),
	mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description("Task to transition."),
	),
	mcp.WithString("status",
		mcp.Required(),
		mcp.Description("Target status."),
		mcp.Enum("approved", "skipped"),
	),
	mcp.WithString("contact_id",
		mcp.Description("Resolve the task against this contact."),
	),
	mcp.WithString("contact_phone",
		mcp.Description("Override the contact phone."),
	),
	mcp.WithString("contact_email",
		mcp.Description("Override the contact email."),
	),
	mcp.WithString("message",
		mcp.Description("Override the drafted message."),
	),
	mcp.WithString("timing",
		mcp.Description("Reschedule before approval."),
		mcp.Enum("immediate", "end_of_day", "tomorrow", "next_week"),
	),
)

var taskBulkApproveToolDef = mcp.NewTool("task_bulk_approve",
	mcp.WithDescription("Approve several pending tasks at once. Each task is handled independently."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Owner of the tasks."),
	),
	mcp.WithArray("task_ids",
		mcp.Required(),
		mcp.Description("Tasks to approve."),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var contactSearchToolDef = mcp.NewTool("contact_search",
	mcp.WithDescription("Rank the owner's contacts against a spoken name, or list the whole directory."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Owner whose directory to search."),
	),
	mcp.WithString("query",
		mcp.Description("Name to match. Empty returns the full directory."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum candidates to return."),
	),
)
