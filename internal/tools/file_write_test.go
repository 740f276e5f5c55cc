package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wardencore/warden/internal/protocol"
)

func TestFileWrite_CreatesParentDirs(t *testing.T) {
	root := t.TempDir()
	h := &FileWrite{Paths: mustGuard(t, root), Backups: NewBackupStore()}
	call := &protocol.Call{Name: "file_write", Args: []protocol.Arg{
		{Key: "path", Value: "nested/dir/a.txt"}, {Key: "content", Value: "hello"},
	}}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "nested", "dir", "a.txt"))
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestFileWrite_RecordsBackupOfPriorContents(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.txt")
	if err := os.WriteFile(p, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	backups := NewBackupStore()
	h := &FileWrite{Paths: mustGuard(t, root), Backups: backups}
	call := &protocol.Call{Name: "file_write", Args: []protocol.Arg{
		{Key: "path", Value: "a.txt"}, {Key: "content", Value: "replaced"},
	}}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prior, ok := backups.Restore(p)
	if !ok {
		t.Fatal("expected a backup to be recorded")
	}
	if string(prior) != "original" {
		t.Fatalf("got %q", prior)
	}
}

func TestFileWrite_RejectsPathOutsideSandbox(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	h := &FileWrite{Paths: mustGuard(t, root), Backups: NewBackupStore()}
	call := &protocol.Call{Name: "file_write", Args: []protocol.Arg{
		{Key: "path", Value: filepath.Join(outside, "a.txt")}, {Key: "content", Value: "x"},
	}}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err == nil {
		t.Fatal("expected an error for a path outside the sandbox")
	}
}
