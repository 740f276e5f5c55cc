package protocol

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/wardencore/warden/internal/audit"
	"github.com/wardencore/warden/internal/permission"
	"github.com/wardencore/warden/internal/provenance"
)

type stubHandler struct {
	data map[string]any
	err  error
}

func (h *stubHandler) Invoke(ctx context.Context, hctx *HandlerContext, call *Call) (map[string]any, error) {
	return h.data, h.err
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *Registry) {
	t.Helper()
	reg := NewRegistry()
	reg.Register(Tool{Name: "file_read", Class: ClassRead, Handler: &stubHandler{data: map[string]any{"content": "hi"}}})
	reg.Register(Tool{Name: "bash_exec", Class: ClassAction, Handler: &stubHandler{data: map[string]any{"stdout": "ok"}}})

	arb := permission.New(nil, nil, true) // skip-permissions so tests don't block on a confirmer
	tracker := provenance.New()
	sink := audit.NewLogSink(zap.NewNop())

	d := New(reg, arb, tracker, sink, func() string { return "turn-1" })
	return d, reg
}

func TestDispatch_UnknownToolYieldsParseError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	call := &Call{Name: "nonexistent_tool"}
	res := d.Dispatch(context.Background(), "proj1", "/tmp", 0, call)
	if res.OK || res.ErrorKind != ErrParseError {
		t.Fatalf("expected parse_error, got %+v", res)
	}
}

func TestDispatch_SuccessfulReadCall(t *testing.T) {
	d, _ := newTestDispatcher(t)
	call := &Call{Name: "file_read", Args: []Arg{{Key: "path", Value: "notes.txt"}}}
	res := d.Dispatch(context.Background(), "proj1", "/tmp", 0, call)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
}

func TestDispatch_ProvenanceBlocksActionAfterUntrustedRead(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.provenance.ObserveRead(true)

	call := &Call{Name: "bash_exec", Args: []Arg{{Key: "command", Value: "ls"}}}
	res := d.Dispatch(context.Background(), "proj1", "/tmp", 1, call)
	if res.OK || res.ErrorKind != ErrProvenanceBlocked {
		t.Fatalf("expected provenance_blocked, got %+v", res)
	}
}

func TestDispatch_InjectionInArgumentBlocked(t *testing.T) {
	d, _ := newTestDispatcher(t)
	call := &Call{Name: "file_read", Args: []Arg{{Key: "path", Value: "a; DROP TABLE users"}}}
	res := d.Dispatch(context.Background(), "proj1", "/tmp", 0, call)
	if res.OK || res.ErrorKind != ErrBlockedMetacharacter {
		t.Fatalf("expected blocked_metacharacter, got %+v", res)
	}
}
