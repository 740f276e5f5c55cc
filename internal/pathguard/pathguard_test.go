package pathguard

import (
	"os"
	"path/filepath"
	"testing"
)

func mustGuard(t *testing.T, root string) *Guard {
	t.Helper()
	g, err := New([]string{root}, []string{".exe", ".sh"}, []string{filepath.Join(root, "secrets", "credentials.json")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestValidate_ReadWithinSandbox(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := mustGuard(t, root)

	got, err := g.Validate("a.txt", root, ModeRead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "a.txt")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestValidate_ReadMissingFile(t *testing.T) {
	root := t.TempDir()
	g := mustGuard(t, root)

	_, err := g.Validate("missing.txt", root, ModeRead)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != ErrNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestValidate_EscapesSandboxViaDotDot(t *testing.T) {
	root := t.TempDir()
	g := mustGuard(t, root)

	_, err := g.Validate("../../etc/passwd", root, ModeRead)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != ErrOutsideSandbox {
		t.Fatalf("expected outside_sandbox, got %v", err)
	}
}

func TestValidate_EscapesSandboxViaSymlink(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), link); err != nil {
		t.Fatal(err)
	}
	g := mustGuard(t, root)

	_, err := g.Validate("link.txt", root, ModeRead)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != ErrOutsideSandbox {
		t.Fatalf("expected outside_sandbox for symlink escape, got %v", err)
	}
}

func TestValidate_ProtectedPathBlocksWrite(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "secrets"), 0o755); err != nil {
		t.Fatal(err)
	}
	g := mustGuard(t, root)

	_, err := g.Validate("secrets/credentials.json", root, ModeWrite)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != ErrProtected {
		t.Fatalf("expected protected, got %v", err)
	}
}

func TestValidate_BlockedExtensionOnWrite(t *testing.T) {
	root := t.TempDir()
	g := mustGuard(t, root)

	_, err := g.Validate("payload.sh", root, ModeWrite)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != ErrBlockedExtension {
		t.Fatalf("expected blocked_extension, got %v", err)
	}
}

func TestValidate_WriteNewFileNotYetExisting(t *testing.T) {
	root := t.TempDir()
	g := mustGuard(t, root)

	got, err := g.Validate("new/nested/out.txt", root, ModeWrite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "new", "nested", "out.txt")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
