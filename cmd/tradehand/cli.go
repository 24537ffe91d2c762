package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/config"
	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/intent"
	"github.com/tradehand/tradehand/internal/mcp"
	"github.com/tradehand/tradehand/internal/ops"
	"github.com/tradehand/tradehand/internal/task"
	"github.com/tradehand/tradehand/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "tradehand",
		Usage:   "Voice-note task assistant for service businesses",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(database, cfg, logger),
			mcpCmd(database, cfg, logger),
			submitCmd(database, cfg, logger),
			tasksCmd(database),
			approveCmd(database, logger),
			skipCmd(database, logger),
			dismissCmd(database),
			archiveExpiredCmd(database),
			tokenCmd(database),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// geminiClient builds the live model client from the environment.
func geminiClient(ctx context.Context, cfg *config.Config) (intent.Client, error) {
	key := config.GeminiAPIKey()
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return intent.NewGeminiClient(ctx, key, cfg.GeminiModel)
}

// serveCmd creates the serve command.
func serveCmd(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Action: func(c *cli.Context) error {
			client, err := geminiClient(c.Context, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return web.NewServer(database, cfg, client, logger).Run()
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			client, err := geminiClient(c.Context, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return mcp.Run(database, cfg, client, logger, Version)
		},
	}
}

// submitCmd creates the submit command.
func submitCmd(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit a transcription (reads from stdin) and generate tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Owner id"},
			&cli.Float64Flag{Name: "duration", Aliases: []string{"d"}, Usage: "Recording length in seconds"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewValidation("transcription must be piped via stdin"))
			}
			transcription, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			client, err := geminiClient(c.Context, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			output, err := ops.Submit(c.Context, database, cfg, client, logger, ops.SubmitInput{
				UserID:          c.String("user"),
				Transcription:   transcription,
				DurationSeconds: c.Float64("duration"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// tasksCmd creates the tasks command.
func tasksCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List tasks for an owner",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Owner id"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, database, ops.ListInput{
				UserID: c.String("user"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// approveCmd creates the approve command.
func approveCmd(database *sql.DB, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "approve",
		Usage:     "Approve a pending task",
		ArgsUsage: "<task-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Owner id"},
			&cli.StringFlag{Name: "phone", Usage: "Override the contact phone"},
			&cli.StringFlag{Name: "email", Usage: "Override the contact email"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Override the drafted message"},
			&cli.StringFlag{Name: "timing", Aliases: []string{"t"}, Usage: "Reschedule: immediate|end_of_day|tomorrow|next_week"},
		},
		Action: func(c *cli.Context) error {
			return runTransition(c, database, logger, task.StatusApproved)
		},
	}
}

// skipCmd creates the skip command.
func skipCmd(database *sql.DB, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "skip",
		Usage:     "Skip a pending task",
		ArgsUsage: "<task-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Owner id"},
		},
		Action: func(c *cli.Context) error {
			return runTransition(c, database, logger, task.StatusSkipped)
		},
	}
}

// runTransition executes a single caller transition for approve/skip.
func runTransition(c *cli.Context, database *sql.DB, logger *zap.Logger, status task.Status) error {
	if c.NArg() < 1 {
		return outputError(errors.NewValidation("task id is required"))
	}

	input := ops.TransitionInput{
		TaskID: c.Args().First(),
		UserID: c.String("user"),
		Status: status,
	}
	if phone := c.String("phone"); phone != "" {
		input.ContactPhone = &phone
	}
	if email := c.String("email"); email != "" {
		input.ContactEmail = &email
	}
	if msg := c.String("message"); msg != "" {
		input.Message = &msg
	}
	if timing := c.String("timing"); timing != "" {
		input.Timing = &timing
	}

	output, err := ops.Transition(c.Context, database, logger, input)
	if err != nil {
		return outputError(err)
	}
	return outputJSON(output)
}

// dismissCmd creates the dismiss command.
func dismissCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "dismiss",
		Usage:     "Dismiss a pending task without review",
		ArgsUsage: "<task-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Owner id"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("task id is required"))
			}
			output, err := ops.Dismiss(c.Context, database, ops.DismissInput{
				TaskID: c.Args().First(),
				UserID: c.String("user"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// archiveExpiredCmd creates the archive-expired command.
func archiveExpiredCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "archive-expired",
		Usage: "Archive unfinished tasks that have passed their expiry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Limit the sweep to one owner"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ArchiveExpired(c.Context, database, ops.ArchiveExpiredInput{
				UserID: c.String("user"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// tokenCmd creates the token command.
func tokenCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage API bearer tokens",
		Subcommands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "Issue a bearer token for an owner",
				ArgsUsage: "<user-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewValidation("user id is required"))
					}
					userID := c.Args().First()

					token, err := newToken()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					if err := db.InsertToken(c.Context, database, token, userID, time.Now()); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]string{"userId": userID, "token": token})
				},
			},
		},
	}
}

// newToken generates a 256-bit random bearer token.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
