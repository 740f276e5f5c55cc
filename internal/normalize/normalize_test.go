package normalize

import "testing"

func TestCommand_PlainASCII(t *testing.T) {
	got, err := Command("git status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "git status" {
		t.Fatalf("got %q, want %q", got, "git status")
	}
}

func TestCommand_StripsZeroWidthSplit(t *testing.T) {
	// "py​thon" visually renders as "python" but the ZWSP would split
	// naive token matching if not stripped before allowlist checks.
	got, err := Command("py​thon -c 'x'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "python -c 'x'" {
		t.Fatalf("got %q, want zero-width stripped", got)
	}
}

func TestCommand_NFKDFoldsFullWidthToASCII(t *testing.T) {
	// Fullwidth "ｐｙｔｈｏｎ" (U+FF41–U+FF5A) NFKD-folds to ASCII "python".
	got, err := Command("ｐｙｔｈｏｎ -c 'x'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "python -c 'x'" {
		t.Fatalf("got %q, want fullwidth folded to ascii", got)
	}
}

func TestCommand_RejectsResidualNonASCII(t *testing.T) {
	_, err := Command("cat fïle.txt")
	if err == nil {
		t.Fatal("expected non_ascii_command error")
	}
	if _, ok := err.(*ErrNonASCII); !ok {
		t.Fatalf("expected *ErrNonASCII, got %T", err)
	}
}
