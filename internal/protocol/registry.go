package protocol

import "context"

// Handler is the capability interface every tool implements. Read/write/
// action/meta classification is a field on the Tool descriptor, not a
// subclass relationship — dispatch never needs to know which concrete
// handler it's holding.
type Handler interface {
	Invoke(ctx context.Context, hctx *HandlerContext, call *Call) (map[string]any, error)
}

// Tool is a registered tool's static descriptor.
type Tool struct {
	Name    string
	Class   Class
	Handler Handler
}

// Registry is the closed set of tools frozen at boot. Plugin loading,
// when enabled, registers into the same registry before it is frozen;
// nothing registers after boot.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds an empty Registry ready for Register calls during
// boot wiring.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool descriptor. Called only during boot wiring.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name] = t
}

// Lookup resolves a tool name to its descriptor.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}
