// Package tools implements the concrete tool handlers: file_read,
// file_write, file_edit, glob_search, grep_search, bash_exec, and the
// git_* subset, each routing every filesystem or process operation
// through the path validator and/or sandbox rather than touching the
// filesystem directly.
package tools

import "sync"

// TrustRegistry tracks which absolute paths the operator has explicitly
// marked trusted (an `/add` with a trust flag, per the provenance
// contract). Everything not in this set — plus all git output and all
// network fetches — is untrusted for provenance purposes.
type TrustRegistry struct {
	mu      sync.RWMutex
	trusted map[string]bool
}

// NewTrustRegistry returns an empty registry; nothing is trusted by default.
func NewTrustRegistry() *TrustRegistry {
	return &TrustRegistry{trusted: make(map[string]bool)}
}

// MarkTrusted records path as operator-trusted.
func (r *TrustRegistry) MarkTrusted(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trusted[path] = true
}

// IsTrusted reports whether path was explicitly marked trusted.
func (r *TrustRegistry) IsTrusted(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trusted[path]
}
