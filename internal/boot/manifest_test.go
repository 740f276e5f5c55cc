package boot

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGenerateThenVerify_Succeeds(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package a")
	b := writeFile(t, dir, "b.go", "package b")

	m, err := Generate([]string{a, b}, "correct-passphrase")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := m.Verify("correct-passphrase"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_RejectsWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package a")

	m, err := Generate([]string{a}, "correct-passphrase")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := m.Verify("wrong-passphrase"); err == nil {
		t.Fatal("expected verification to fail with the wrong passphrase")
	}
}

func TestVerify_DetectsTamperedFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package a")

	m, err := Generate([]string{a}, "passphrase")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := os.WriteFile(a, []byte("package a // tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := m.Verify("passphrase"); err == nil {
		t.Fatal("expected verification to fail after tampering with a trust-root file")
	}
}

func TestGenerateAndSave_RoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package a")
	manifestPath := filepath.Join(dir, "manifest.json")

	if err := GenerateAndSave([]string{a}, "passphrase", manifestPath); err != nil {
		t.Fatalf("GenerateAndSave: %v", err)
	}

	code, err := VerifyOrExit(manifestPath, "passphrase")
	if err != nil {
		t.Fatalf("unexpected verification error: %v", err)
	}
	if code != ExitOK {
		t.Fatalf("expected ExitOK, got %v", code)
	}
}

func TestVerifyOrExit_ReturnsIntegrityFailureCode(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package a")
	manifestPath := filepath.Join(dir, "manifest.json")

	if err := GenerateAndSave([]string{a}, "passphrase", manifestPath); err != nil {
		t.Fatalf("GenerateAndSave: %v", err)
	}
	if err := os.WriteFile(a, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, err := VerifyOrExit(manifestPath, "passphrase")
	if err == nil {
		t.Fatal("expected an error")
	}
	if code != ExitIntegrityFailure {
		t.Fatalf("expected ExitIntegrityFailure, got %v", code)
	}
}

func TestVerifyOrExit_ReturnsConfigErrorForMissingManifest(t *testing.T) {
	code, err := VerifyOrExit(filepath.Join(t.TempDir(), "missing.json"), "passphrase")
	if err == nil {
		t.Fatal("expected an error")
	}
	if code != ExitConfigError {
		t.Fatalf("expected ExitConfigError, got %v", code)
	}
}
