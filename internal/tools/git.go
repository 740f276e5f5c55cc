package tools

import (
	"context"
	"fmt"

	"github.com/wardencore/warden/internal/anchor"
	"github.com/wardencore/warden/internal/protocol"
	"github.com/wardencore/warden/internal/sandbox"
)

// GitRead implements the read-class git_* subset (status, diff, log):
// output can carry injected instructions in commit messages or diff
// hunks, so it passes through the trigger scanner and anchorer exactly
// like any other read-class result.
type GitRead struct {
	Sandbox    *sandbox.Sandbox
	Subcommand string // "status" | "diff" | "log"
}

func (h *GitRead) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	argv := []string{"git", h.Subcommand}
	if v, ok := call.Get("args"); ok && v != "" {
		argv = append(argv, v)
	}

	result, err := h.Sandbox.Run(ctx, &sandbox.Accepted{Argv: argv}, hctx.Cwd)
	if err != nil {
		return nil, fmt.Errorf("git_%s: %w", h.Subcommand, err)
	}

	wrapped, matches := anchor.ScanAndWrap("git:"+h.Subcommand, string(result.Output))
	return map[string]any{
		"output":            wrapped,
		"status":            string(result.Status),
		"exit_code":         result.ExitCode,
		"truncated":         result.Truncated,
		"neutralized_count": len(matches),
		"untrusted_origin":  true, // all git output is untrusted per the provenance contract
	}, nil
}

// GitAction implements the write-class git_* subset (add, commit):
// action-class for provenance purposes, so the dispatcher checks taint
// before Invoke ever runs.
type GitAction struct {
	Sandbox    *sandbox.Sandbox
	Subcommand string // "add" | "commit"
}

func (h *GitAction) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	argv := []string{"git", h.Subcommand}
	switch h.Subcommand {
	case "commit":
		message, ok := call.Get("message")
		if !ok {
			return nil, fmt.Errorf("git_commit: missing message argument")
		}
		argv = append(argv, "-m", message)
	case "add":
		path, ok := call.Get("path")
		if !ok {
			path, ok = call.Positional(0)
		}
		if !ok {
			return nil, fmt.Errorf("git_add: missing path argument")
		}
		argv = append(argv, path)
	}

	result, err := h.Sandbox.Run(ctx, &sandbox.Accepted{Argv: argv}, hctx.Cwd)
	if err != nil {
		return nil, fmt.Errorf("git_%s: %w", h.Subcommand, err)
	}

	return map[string]any{
		"status":    string(result.Status),
		"exit_code": result.ExitCode,
		"output":    string(result.Output),
		"truncated": result.Truncated,
	}, nil
}
