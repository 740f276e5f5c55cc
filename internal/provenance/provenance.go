// Package provenance implements the per-turn taint tracker: the simple
// information-flow rule that closes "read-then-exfiltrate-in-same-breath"
// without requiring semantic analysis of tool arguments.
package provenance

import "fmt"

// ErrBlocked is returned when an action-class call is attempted while the
// turn is tainted.
type ErrBlocked struct {
	Tool string
}

func (e *ErrBlocked) Error() string {
	return fmt.Sprintf("provenance_blocked: %s refused, turn is tainted", e.Tool)
}

// Class is a tool's provenance-relevant classification. Only read-class
// and action-class tools participate in the taint state machine; meta
// tools (e.g. listing available tools) are neither.
type Class int

const (
	ClassMeta Class = iota
	ClassRead
	ClassAction
)

// Tracker owns the tainted flag for exactly one model turn. It is reset
// by calling Reset at the start of every new operator message — never
// shared across turns.
type Tracker struct {
	tainted bool
}

// New returns a Tracker with taint cleared, ready for a new turn.
func New() *Tracker {
	return &Tracker{}
}

// Reset clears the taint flag. Call this when a new operator message
// arrives; the guarantee is per-turn, not per-session.
func (t *Tracker) Reset() {
	t.tainted = false
}

// Tainted reports the current taint state.
func (t *Tracker) Tainted() bool {
	return t.tainted
}

// ObserveRead records the outcome of a completed read-class tool call.
// untrustedOrigin is true when the content came from outside the
// repository's trusted set: any file the operator did not explicitly
// mark trusted, plus all git output, plus all network fetches. Taint is
// monotonic within a turn: once set, only Reset clears it.
func (t *Tracker) ObserveRead(untrustedOrigin bool) {
	if untrustedOrigin {
		t.tainted = true
	}
}

// CheckAction must be called before executing any action-class tool. It
// refuses with *ErrBlocked if the turn is currently tainted, and does not
// execute the action.
func (t *Tracker) CheckAction(toolName string) error {
	if t.tainted {
		return &ErrBlocked{Tool: toolName}
	}
	return nil
}
