package pathguard

import (
	"errors"
	"os"
	"path/filepath"
)

// errNotExist is the sentinel resolveCandidate wraps os.ErrNotExist in, so
// Validate can distinguish "the file does not exist" (reported as
// not_found in read mode; a write target is allowed to not exist yet,
// an edit target is not) from other resolution failures.
var errNotExist = os.ErrNotExist

// resolveExisting canonicalizes a path that must already exist on disk —
// used for allowed_dirs roots at Guard construction time.
func resolveExisting(abs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}

// resolveCandidate canonicalizes a write/read/edit target. For read and
// edit targets the path must exist and its symlink chain is fully
// resolved. For write targets the leaf may not exist yet, so only the
// deepest existing ancestor directory is resolved, and the remaining
// (not-yet-created) path components are appended back on.
func resolveCandidate(candidate string, mode Mode) (string, error) {
	if mode == ModeRead || mode == ModeEdit {
		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", errNotExist
			}
			return "", err
		}
		return filepath.Clean(resolved), nil
	}

	dir, leaf := filepath.Split(candidate)
	resolvedDir, err := resolveDeepestExisting(filepath.Clean(dir))
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, leaf), nil
}

// resolveDeepestExisting walks up from dir until it finds an ancestor that
// exists, resolves that ancestor's symlinks, then rejoins the
// not-yet-existing suffix unresolved (there is nothing to resolve: it
// doesn't exist yet).
func resolveDeepestExisting(dir string) (string, error) {
	suffix := ""
	cur := dir
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, suffix), nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", errNotExist
		}
		suffix = filepath.Join(filepath.Base(cur), suffix)
		cur = parent
	}
}
