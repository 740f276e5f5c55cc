package tools

import (
	"context"
	"testing"

	"github.com/wardencore/warden/internal/protocol"
)

func TestGitRead_RunsStatusAndMarksUntrusted(t *testing.T) {
	root := t.TempDir()
	h := &GitRead{Sandbox: newTestSandboxFor(t, root), Subcommand: "status"}
	call := &protocol.Call{Name: "git_status"}
	data, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if untrusted, _ := data["untrusted_origin"].(bool); !untrusted {
		t.Fatal("expected git output to always be marked untrusted_origin")
	}
}

func TestGitAction_CommitRequiresMessage(t *testing.T) {
	root := t.TempDir()
	h := &GitAction{Sandbox: newTestSandboxFor(t, root), Subcommand: "commit"}
	call := &protocol.Call{Name: "git_commit"}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err == nil {
		t.Fatal("expected an error when message is missing")
	}
}

func TestGitAction_AddRequiresPath(t *testing.T) {
	root := t.TempDir()
	h := &GitAction{Sandbox: newTestSandboxFor(t, root), Subcommand: "add"}
	call := &protocol.Call{Name: "git_add"}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err == nil {
		t.Fatal("expected an error when path is missing")
	}
}
