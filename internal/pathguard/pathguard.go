// Package pathguard implements the confinement contract every filesystem
// operation in the runtime must pass through: validate_path(p, mode) from
// the sandbox core. No handler touches the filesystem on an unvalidated path.
package pathguard

import (
	"errors"
	"path/filepath"
	"strings"
)

// Mode is the operation a candidate path is being validated for.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeEdit
)

// ErrorKind is one of the canonical error_kind values a path validation
// failure can produce.
type ErrorKind string

const (
	ErrOutsideSandbox   ErrorKind = "outside_sandbox"
	ErrProtected        ErrorKind = "protected"
	ErrBlockedExtension ErrorKind = "blocked_extension"
	ErrNotFound         ErrorKind = "not_found"
)

// ValidationError carries the canonical error_kind plus the path that
// triggered it, so callers can surface both to the operator.
type ValidationError struct {
	Kind ErrorKind
	Path string
}

func (e *ValidationError) Error() string {
	return string(e.Kind) + ": " + e.Path
}

// Guard holds the immutable confinement policy: the directories filesystem
// operations are bound to, the extensions write/edit destinations may never
// bear, and the absolute trust-root paths no write/edit may ever target.
type Guard struct {
	allowedDirs      []string
	blockedWriteExts map[string]bool
	protectedPaths   map[string]bool
}

// New builds a Guard. Relative allowedDirs and protectedPaths are made
// absolute against the process working directory; New then canonicalizes
// allowedDirs via EvalSymlinks so a symlinked sandbox root still confines
// correctly.
func New(allowedDirs []string, blockedWriteExts, protectedPaths []string) (*Guard, error) {
	g := &Guard{
		blockedWriteExts: make(map[string]bool, len(blockedWriteExts)),
		protectedPaths:   make(map[string]bool, len(protectedPaths)),
	}
	for _, ext := range blockedWriteExts {
		g.blockedWriteExts[strings.ToLower(ext)] = true
	}
	for _, p := range protectedPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		g.protectedPaths[abs] = true
	}
	for _, dir := range allowedDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		resolved, err := resolveExisting(abs)
		if err != nil {
			return nil, err
		}
		g.allowedDirs = append(g.allowedDirs, resolved)
	}
	return g, nil
}

// Validate resolves p (against base for relative paths), follows symlinks,
// and enforces confinement, protected-path, and (for write/edit) extension
// policy. It returns the canonical absolute path on success.
func (g *Guard) Validate(p, base string, mode Mode) (string, error) {
	candidate := p
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveCandidate(candidate, mode)
	if err != nil {
		if mode == ModeRead && errors.Is(err, errNotExist) {
			if alt, aerr := resolveDeepestExisting(candidate); aerr == nil && !g.isConfined(alt) {
				return "", &ValidationError{Kind: ErrOutsideSandbox, Path: p}
			}
			return "", &ValidationError{Kind: ErrNotFound, Path: p}
		}
		return "", err
	}

	if !g.isConfined(resolved) {
		return "", &ValidationError{Kind: ErrOutsideSandbox, Path: p}
	}

	if mode != ModeRead {
		if g.protectedPaths[resolved] {
			return "", &ValidationError{Kind: ErrProtected, Path: p}
		}
		if ext := strings.ToLower(filepath.Ext(resolved)); g.blockedWriteExts[ext] {
			return "", &ValidationError{Kind: ErrBlockedExtension, Path: p}
		}
	}

	return resolved, nil
}

// isConfined reports whether resolved is equal to, or a descendant of, one
// of the guard's allowed directories.
func (g *Guard) isConfined(resolved string) bool {
	for _, dir := range g.allowedDirs {
		if resolved == dir {
			return true
		}
		if strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
