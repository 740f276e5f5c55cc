package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wardencore/warden/internal/protocol"
)

func TestFileEdit_ReplacesUniqueMatch(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.txt")
	if err := os.WriteFile(p, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &FileEdit{Paths: mustGuard(t, root)}
	call := &protocol.Call{Name: "file_edit", Args: []protocol.Arg{
		{Key: "path", Value: "a.txt"}, {Key: "find", Value: "world"}, {Key: "replace", Value: "there"},
	}}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := os.ReadFile(p)
	if string(got) != "hello there" {
		t.Fatalf("got %q", got)
	}
}

func TestFileEdit_AmbiguousWithoutOccurrence(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.txt")
	if err := os.WriteFile(p, []byte("foo foo foo"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &FileEdit{Paths: mustGuard(t, root)}
	call := &protocol.Call{Name: "file_edit", Args: []protocol.Arg{
		{Key: "path", Value: "a.txt"}, {Key: "find", Value: "foo"}, {Key: "replace", Value: "bar"},
	}}
	_, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call)
	if _, ok := err.(*ErrAmbiguousMatch); !ok {
		t.Fatalf("expected ErrAmbiguousMatch, got %v", err)
	}
}

func TestFileEdit_OccurrenceDisambiguates(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.txt")
	if err := os.WriteFile(p, []byte("foo foo foo"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &FileEdit{Paths: mustGuard(t, root)}
	call := &protocol.Call{Name: "file_edit", Args: []protocol.Arg{
		{Key: "path", Value: "a.txt"}, {Key: "find", Value: "foo"}, {Key: "replace", Value: "bar"}, {Key: "occurrence", Value: "2"},
	}}
	if _, err := h.Invoke(context.Background(), &protocol.HandlerContext{Cwd: root}, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := os.ReadFile(p)
	if string(got) != "foo bar foo" {
		t.Fatalf("got %q", got)
	}
}
