package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wardencore/warden/internal/protocol"
)

// GlobSearch implements glob_search(pattern): resolves within the
// sandbox root only, returning sandbox-relative paths.
type GlobSearch struct {
	AllowedDirs []string
}

func (h *GlobSearch) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	pattern, ok := call.Get("pattern")
	if !ok {
		pattern, ok = call.Positional(0)
	}
	if !ok {
		return nil, fmt.Errorf("glob_search: missing pattern argument")
	}

	root := sandboxRootFor(h.AllowedDirs, hctx.Cwd)
	if root == "" {
		return nil, fmt.Errorf("glob_search: cwd is outside any allowed directory")
	}

	matches, err := filepath.Glob(filepath.Join(root, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob_search: %w", err)
	}

	rel := make([]string, 0, len(matches))
	for _, m := range matches {
		r, err := filepath.Rel(root, m)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			continue
		}
		rel = append(rel, r)
	}

	return map[string]any{"matches": rel}, nil
}

// sandboxRootFor returns the allowed-dirs entry that contains cwd, so a
// glob pattern never escapes the sandbox via its own root.
func sandboxRootFor(allowedDirs []string, cwd string) string {
	for _, dir := range allowedDirs {
		if cwd == dir || strings.HasPrefix(cwd, dir+string(filepath.Separator)) {
			return dir
		}
	}
	return ""
}
