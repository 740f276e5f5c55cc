package protocol

import (
	"strings"
	"testing"
)

func TestFrame_SuccessEnvelope(t *testing.T) {
	r := &Result{Name: "file_read", OK: true, Data: map[string]any{"content": "hi"}}
	framed := Frame(r)
	if !strings.HasPrefix(framed, "[TOOL_RESULT file_read]\n") {
		t.Fatalf("missing open marker: %q", framed)
	}
	if !strings.HasSuffix(framed, "[/TOOL_RESULT]") {
		t.Fatalf("missing close marker: %q", framed)
	}
	if !strings.Contains(framed, `"ok":true`) {
		t.Fatalf("missing ok:true: %q", framed)
	}
}

func TestFrame_FailureEnvelope(t *testing.T) {
	r := &Result{Name: "bash_exec", OK: false, ErrorKind: ErrProvenanceBlocked, Detail: "turn is tainted"}
	framed := Frame(r)
	if !strings.Contains(framed, `"error_kind":"provenance_blocked"`) {
		t.Fatalf("missing error_kind: %q", framed)
	}
}
