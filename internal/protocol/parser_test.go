package protocol

import "testing"

func TestParseCalls_QuotedAndBareKeywordArguments(t *testing.T) {
	text := `::TOOL file_read(path="notes.txt", offset=10)::`
	calls, errs := ParseCalls(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	c := calls[0]
	if c.Name != "file_read" {
		t.Fatalf("got name %q", c.Name)
	}
	path, ok := c.Get("path")
	if !ok || path != "notes.txt" {
		t.Fatalf("got path %q ok=%v", path, ok)
	}
	offset, ok := c.Get("offset")
	if !ok || offset != "10" {
		t.Fatalf("got offset %q ok=%v", offset, ok)
	}
}

func TestParseCalls_MultipleCallsInEmissionOrder(t *testing.T) {
	text := "some model prose\n" +
		`::TOOL file_read(path="a.txt")::` + "\n" +
		"more prose\n" +
		`::TOOL bash_exec(command="ls")::`
	calls, errs := ParseCalls(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(calls) != 2 || calls[0].Name != "file_read" || calls[1].Name != "bash_exec" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestParseCalls_MalformedYieldsParseError(t *testing.T) {
	text := `::TOOL file_read(path="notes.txt"` // missing closing paren and ::
	calls, errs := ParseCalls(text)
	if len(calls) != 0 {
		t.Fatalf("expected no calls, got %v", calls)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d", len(errs))
	}
}

func TestParseCalls_QuotedValueWithEscapedQuote(t *testing.T) {
	text := `::TOOL file_edit(find="say \"hi\"", replace="bye")::`
	calls, errs := ParseCalls(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	find, _ := calls[0].Get("find")
	if find != `say "hi"` {
		t.Fatalf("got %q", find)
	}
}

func TestParseCalls_PositionalArgument(t *testing.T) {
	text := `::TOOL glob_search("*.go")::`
	calls, errs := ParseCalls(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	pattern, ok := calls[0].Positional(0)
	if !ok || pattern != "*.go" {
		t.Fatalf("got %q ok=%v", pattern, ok)
	}
}

func TestParseCalls_IgnoresOrdinaryProse(t *testing.T) {
	text := "I will now read the file for you."
	calls, errs := ParseCalls(text)
	if len(calls) != 0 || len(errs) != 0 {
		t.Fatalf("expected no calls or errors, got calls=%v errs=%v", calls, errs)
	}
}
