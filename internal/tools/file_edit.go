package tools

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wardencore/warden/internal/pathguard"
	"github.com/wardencore/warden/internal/protocol"
)

// ErrAmbiguousMatch is returned when find matches more than once and no
// occurrence index disambiguates which one to replace.
type ErrAmbiguousMatch struct {
	Path  string
	Count int
}

func (e *ErrAmbiguousMatch) Error() string {
	return fmt.Sprintf("ambiguous_match: %q matches %d times in %s", "find", e.Count, e.Path)
}

// FileEdit implements file_edit(path, find, replace, occurrence?):
// validates write-mode, requires find to match uniquely unless
// occurrence specifies an ordinal (1-based), and fails with
// ambiguous_match otherwise.
type FileEdit struct {
	Paths   *pathguard.Guard
	Backups *BackupStore
}

func (h *FileEdit) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	path, ok := call.Get("path")
	if !ok {
		return nil, fmt.Errorf("file_edit: missing path argument")
	}
	find, ok := call.Get("find")
	if !ok {
		return nil, fmt.Errorf("file_edit: missing find argument")
	}
	replace, ok := call.Get("replace")
	if !ok {
		return nil, fmt.Errorf("file_edit: missing replace argument")
	}

	resolved, err := h.Paths.Validate(path, hctx.Cwd, pathguard.ModeEdit)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("file_edit: %w", err)
	}
	original := string(data)
	count := strings.Count(original, find)
	if count == 0 {
		return nil, fmt.Errorf("file_edit: find string not present in %s", resolved)
	}

	occurrence := 0
	if v, ok := call.Get("occurrence"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("file_edit: invalid occurrence %q", v)
		}
		occurrence = n
	}

	if count > 1 && occurrence == 0 {
		return nil, &ErrAmbiguousMatch{Path: resolved, Count: count}
	}

	var updated string
	if occurrence == 0 {
		updated = strings.Replace(original, find, replace, 1)
	} else {
		updated = replaceNth(original, find, replace, occurrence)
		if updated == original {
			return nil, fmt.Errorf("file_edit: occurrence %d out of range (%d matches)", occurrence, count)
		}
	}

	if h.Backups != nil {
		h.Backups.Record(resolved, data)
	}

	if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
		return nil, fmt.Errorf("file_edit: %w", err)
	}

	return map[string]any{"path": resolved, "replacements": 1}, nil
}

// replaceNth replaces the n-th (1-based) occurrence of find with
// replace in s, returning s unchanged if there is no such occurrence.
func replaceNth(s, find, replace string, n int) string {
	idx := -1
	searchFrom := 0
	for i := 0; i < n; i++ {
		rel := strings.Index(s[searchFrom:], find)
		if rel < 0 {
			return s
		}
		idx = searchFrom + rel
		searchFrom = idx + len(find)
	}
	return s[:idx] + replace + s[idx+len(find):]
}
