package protocol

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wardencore/warden/internal/audit"
	"github.com/wardencore/warden/internal/injectionscan"
	"github.com/wardencore/warden/internal/permission"
	"github.com/wardencore/warden/internal/provenance"
)

// HandlerContext is what a Handler's Invoke receives: everything it
// needs to route filesystem/process operations through the components
// that guard them, plus the call's position within the turn.
type HandlerContext struct {
	Ctx       context.Context
	ProjectID string
	Cwd       string
	CallIndex int
}

// Dispatcher wires together the full decision chain: resolve → arbitrate
// permission → (action-class) check provenance → scan arguments → invoke
// → emit audit event → frame result.
type Dispatcher struct {
	registry   *Registry
	arbitrator *permission.Arbitrator
	provenance *provenance.Tracker
	sink       audit.Sink
	turnID     func() string
	maxPayload int
}

// New builds a Dispatcher. turnID supplies the current turn's
// identifier (the boot wiring owns turn lifecycle; the dispatcher only
// stamps it onto audit events).
func New(registry *Registry, arbitrator *permission.Arbitrator, tracker *provenance.Tracker, sink audit.Sink, turnID func() string) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		arbitrator: arbitrator,
		provenance: tracker,
		sink:       sink,
		turnID:     turnID,
		maxPayload: 50_000,
	}
}

// Dispatch resolves and routes one parsed Call, in emission order. It
// never returns a Go error for an ordinary refusal — refusals become
// Result{OK: false, ErrorKind: ...}; only truly unexpected failures
// surface as internal_error, also inside the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, projectID, cwd string, callIndex int, call *Call) *Result {
	start := time.Now()

	tool, ok := d.registry.Lookup(call.Name)
	if !ok {
		return d.finish(start, call, callIndex, "n/a", ErrParseError, "unknown tool: "+call.Name)
	}

	if err := d.arbitrator.Resolve(ctx, projectID, call.Name); err != nil {
		return d.finish(start, call, callIndex, "deny", ErrPermissionDenied, err.Error())
	}

	if tool.Class == ClassAction {
		if err := d.provenance.CheckAction(call.Name); err != nil {
			return d.finish(start, call, callIndex, "allow", ErrProvenanceBlocked, err.Error())
		}
	}

	if kind, detail := scanArguments(call); kind != "" {
		return d.finish(start, call, callIndex, "allow", kind, detail)
	}

	hctx := &HandlerContext{Ctx: ctx, ProjectID: projectID, Cwd: cwd, CallIndex: callIndex}
	data, err := tool.Handler.Invoke(ctx, hctx, call)
	if err != nil {
		return d.finish(start, call, callIndex, "allow", handlerErrorKind(err), err.Error())
	}

	if tool.Class == ClassRead {
		d.provenance.ObserveRead(readIsUntrusted(data))
	}

	result := &Result{Name: call.Name, OK: true, Data: data}
	d.emit(start, call, callIndex, "allow", "")
	return result
}

// readIsUntrusted inspects a read-class handler's result for the
// untrusted_origin marker every read handler sets (file outside the
// trusted set, git output, network fetches).
func readIsUntrusted(data map[string]any) bool {
	v, ok := data["untrusted_origin"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// handlerErrorKind maps a handler refusal to its canonical error_kind:
// path-validator, sandbox-pipeline and file_edit refusals all render as
// "<kind>" or "<kind>: detail". Any other handler error is internal_error.
func handlerErrorKind(err error) ErrorKind {
	msg := err.Error()
	for _, k := range []ErrorKind{ErrOutsideSandbox, ErrProtected, ErrBlockedExtension, ErrNotFound,
		ErrNonASCIICommand, ErrBlockedMetacharacter, ErrCommandNotAllowed, ErrInlineInterpreter, ErrAmbiguousMatch} {
		if msg == string(k) || strings.HasPrefix(msg, string(k)+":") {
			return k
		}
	}
	return ErrInternalError
}

// scanArguments runs the argument-level injection safety net over every
// argument of every call, independent of the tool's own path and
// metacharacter confinement. It does not scan for PII.
func scanArguments(call *Call) (ErrorKind, string) {
	for _, a := range call.Args {
		if finding, hit := injectionscan.ScanInjection(a.Value); hit {
			return ErrBlockedMetacharacter, finding.Detail + " in argument " + a.Key
		}
	}
	return "", ""
}

func (d *Dispatcher) finish(start time.Time, call *Call, callIndex int, decision string, kind ErrorKind, detail string) *Result {
	d.emit(start, call, callIndex, decision, kind)
	return &Result{Name: call.Name, OK: false, ErrorKind: kind, Detail: detail}
}

func (d *Dispatcher) emit(start time.Time, call *Call, callIndex int, decision string, kind ErrorKind) {
	d.sink.Write(audit.Event{
		EventID:         uuid.New().String(),
		TurnID:          d.turnID(),
		CallIndex:       callIndex,
		ToolName:        call.Name,
		CapabilityClass: d.classString(call),
		Decision:        decision,
		ErrorKind:       string(kind),
		Tainted:         d.provenance.Tainted(),
		LatencyMs:       float64(time.Since(start).Microseconds()) / 1000.0,
		ArgumentPreview: audit.TruncateArgumentPreview(previewArgs(call)),
		Timestamp:       time.Now().UTC(),
	})
}

func (d *Dispatcher) classString(call *Call) string {
	tool, ok := d.registry.Lookup(call.Name)
	if !ok {
		return "unknown"
	}
	switch tool.Class {
	case ClassRead:
		return "read"
	case ClassAction:
		return "action"
	default:
		return "meta"
	}
}

func previewArgs(call *Call) string {
	s := call.Name + "("
	for i, a := range call.Args {
		if i > 0 {
			s += ", "
		}
		if a.Key != "" {
			s += a.Key + "="
		}
		s += a.Value
	}
	return s + ")"
}
