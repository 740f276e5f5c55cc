package tools

import (
	"context"
	"fmt"

	"github.com/wardencore/warden/internal/protocol"
	"github.com/wardencore/warden/internal/sandbox"
)

// BashExec implements bash_exec(command): the entire contract is the
// command sandbox's four-phase pipeline plus direct-spawn execution.
type BashExec struct {
	Sandbox *sandbox.Sandbox
}

func (h *BashExec) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	command, ok := call.Get("command")
	if !ok {
		command, ok = call.Positional(0)
	}
	if !ok {
		return nil, fmt.Errorf("bash_exec: missing command argument")
	}

	accepted, err := h.Sandbox.Validate(command, hctx.Cwd)
	if err != nil {
		return nil, err
	}

	result, err := h.Sandbox.Run(ctx, accepted, hctx.Cwd)
	if err != nil {
		return nil, fmt.Errorf("bash_exec: %w", err)
	}

	return map[string]any{
		"status":    string(result.Status),
		"exit_code": result.ExitCode,
		"output":    string(result.Output),
		"truncated": result.Truncated,
	}, nil
}
